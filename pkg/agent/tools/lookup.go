package tools

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/artex-assurances/aria/pkg/agent/directory"
)

const (
	msgNoMatch    = "Désolé, aucun client correspondant n'a été trouvé avec ces informations."
	msgMultiMatch = "J'ai trouvé plusieurs clients correspondants. Pour vous identifier précisément, pouvez-vous me donner votre adresse e-mail ?"
)

// handleLookup applies the shared lookup contract: zero matches clears the
// pending candidate, exactly one parks it for confirmation, several leave the
// session untouched and ask for a narrower identifier.
func handleLookup(ctx context.Context, call *CallContext, matches []directory.Client) string {
	switch len(matches) {
	case 0:
		call.Session.ClearPending(ctx)
		return msgNoMatch
	case 1:
		c := matches[0]
		call.Session.SetPending(ctx, c)
		return fmt.Sprintf("J'ai trouvé un dossier pour %s %s. Pouvez-vous me confirmer que c'est bien vous afin que j'accède à ce dossier en toute sécurité ?",
			c.FirstName, c.LastName)
	default:
		return msgMultiMatch
	}
}

func (t *Toolset) lookupByEmail() Executor {
	return &tool{
		name: "lookup_client_by_email",
		decl: declaration("lookup_client_by_email",
			"Recherche un client par son adresse e-mail pour démarrer le processus d'identification.",
			objectSchema(map[string]*genai.Schema{
				"email": stringParam("Adresse e-mail du client."),
			}, "email")),
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			email := stringArg(args, "email")
			if email == "" {
				return "Pouvez-vous me répéter votre adresse e-mail ?", nil
			}
			client, err := t.dir.ClientByEmail(ctx, email)
			if err != nil {
				return "", fmt.Errorf("lookup by email: %w", err)
			}
			var matches []directory.Client
			if client != nil {
				matches = []directory.Client{*client}
			}
			return handleLookup(ctx, call, matches), nil
		},
	}
}

func (t *Toolset) lookupByPhone() Executor {
	return &tool{
		name: "lookup_client_by_phone",
		decl: declaration("lookup_client_by_phone",
			"Recherche un client par son numéro de téléphone. Utilisé notamment pour la recherche automatique en début d'appel.",
			objectSchema(map[string]*genai.Schema{
				"phone": stringParam("Numéro de téléphone du client."),
			}, "phone")),
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			phone := stringArg(args, "phone")
			if phone == "" {
				return "Pouvez-vous me répéter votre numéro de téléphone ?", nil
			}
			matches, err := t.dir.ClientsByPhone(ctx, phone)
			if err != nil {
				return "", fmt.Errorf("lookup by phone: %w", err)
			}
			return handleLookup(ctx, call, matches), nil
		},
	}
}

func (t *Toolset) lookupByFullname() Executor {
	return &tool{
		name: "lookup_client_by_fullname",
		decl: declaration("lookup_client_by_fullname",
			"Recherche un client par son nom et son prénom pour démarrer le processus d'identification.",
			objectSchema(map[string]*genai.Schema{
				"last_name":  stringParam("Nom de famille du client."),
				"first_name": stringParam("Prénom du client."),
			}, "last_name", "first_name")),
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			lastName := stringArg(args, "last_name")
			firstName := stringArg(args, "first_name")
			if lastName == "" || firstName == "" {
				return "Pouvez-vous me donner votre nom et votre prénom ?", nil
			}
			matches, err := t.dir.ClientsByFullName(ctx, lastName, firstName)
			if err != nil {
				return "", fmt.Errorf("lookup by fullname: %w", err)
			}
			return handleLookup(ctx, call, matches), nil
		},
	}
}
