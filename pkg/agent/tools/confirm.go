package tools

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/artex-assurances/aria/pkg/agent/directory"
	"github.com/artex-assurances/aria/pkg/agent/identity"
)

const (
	msgConfirmFirst = "Veuillez d'abord rechercher un client avant de confirmer une identité."
	msgDenied       = "Très bien, je n'accéderai pas à ce dossier. Comment puis-je vous aider ?"
	msgCleared      = "Le contexte a été réinitialisé. Comment puis-je vous aider ?"
)

func (t *Toolset) confirmIdentity() Executor {
	return &tool{
		name: "confirm_identity",
		decl: declaration("confirm_identity",
			"Confirme ou infirme l'identité du client trouvé par un outil de recherche. DOIT être appelé après qu'une recherche a trouvé un client potentiel.",
			objectSchema(map[string]*genai.Schema{
				"confirmation": {Type: genai.TypeBoolean, Description: "Vrai si l'appelant confirme être la personne trouvée."},
			}, "confirmation")),
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			confirmation, ok := boolArg(args, "confirmation")
			if !ok {
				return "Pouvez-vous me confirmer, par oui ou par non, que c'est bien vous ?", nil
			}

			if !confirmation {
				if err := call.Session.Deny(ctx); err != nil {
					if err == identity.ErrNoPendingCandidate {
						return msgConfirmFirst, nil
					}
					return "", err
				}
				return msgDenied, nil
			}

			client, err := call.Session.Confirm(ctx)
			if err != nil {
				if err == identity.ErrNoPendingCandidate {
					return msgConfirmFirst, nil
				}
				return "", err
			}

			if call.CallID != 0 {
				if err := t.recorder.SetClientContext(ctx, call.CallID, client.ID); err != nil {
					t.logger.Warn("call client link failed", "call_id", call.CallID, "client_id", client.ID, "error", err)
				}
			}

			reply := fmt.Sprintf("Merci ! Identité confirmée. Le dossier de %s %s est maintenant ouvert. Comment puis-je vous aider ?",
				client.FirstName, client.LastName)
			return reply + t.upcomingEnrichment(ctx, client.ID), nil
		},
	}
}

// upcomingEnrichment is best-effort: it runs after the confirmation is
// already applied, and any failure degrades to an empty suffix.
func (t *Toolset) upcomingEnrichment(ctx context.Context, clientID int64) string {
	events, err := t.dir.UpcomingAppointments(ctx, clientID, t.now())
	if err != nil {
		t.logger.Warn("upcoming appointments enrichment failed", "client_id", clientID, "error", err)
		return ""
	}
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(" Par ailleurs, je vois que vous avez des rendez-vous à venir :")
	for _, ev := range events {
		b.WriteString(fmt.Sprintf("\n- %s : %s", formatEventDate(ev), ev.Comment))
	}
	return b.String()
}

func formatEventDate(ev directory.ClientEvent) string {
	if ev.ForDate.Hour() == 0 && ev.ForDate.Minute() == 0 {
		return ev.ForDate.Format("02/01/2006")
	}
	return ev.ForDate.Format("02/01/2006 à 15:04")
}

func (t *Toolset) clearContext() Executor {
	return &tool{
		name: "clear_context",
		decl: declaration("clear_context",
			"Efface le client actuellement sélectionné du contexte de l'assistant. À utiliser si la mauvaise personne a été identifiée ou pour clore l'échange en cours.",
			objectSchema(map[string]*genai.Schema{})),
		run: func(ctx context.Context, call *CallContext, _ map[string]any) (string, error) {
			call.Session.Clear(ctx)
			return msgCleared, nil
		},
	}
}
