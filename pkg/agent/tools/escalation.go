package tools

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/artex-assurances/aria/pkg/agent/audit"
)

// The escalation and intake tools are deliberately not identity-gated: a
// prospect or an unidentified caller must still be able to reach a human,
// ask for a quote or report a problem.

func (t *Toolset) findEmployeeForEscalation() Executor {
	return &tool{
		name: "find_employee_for_escalation",
		decl: declaration("find_employee_for_escalation",
			"Recherche un conseiller actif vers qui escalader la demande, par nom ou par fonction.",
			objectSchema(map[string]*genai.Schema{
				"name":     stringParam("Nom ou prénom du conseiller recherché, si connu."),
				"function": stringParam("Fonction recherchée, par exemple 'Support' ou 'Commercial'."),
			})),
		run: func(ctx context.Context, _ *CallContext, args map[string]any) (string, error) {
			employees, err := t.dir.ActiveEmployees(ctx, stringArg(args, "name"), stringArg(args, "function"))
			if err != nil {
				return "", fmt.Errorf("find employee: %w", err)
			}
			if len(employees) == 0 {
				return "Désolé, aucun conseiller disponible ne correspond à cette recherche.", nil
			}
			e := employees[0]
			return fmt.Sprintf("J'ai trouvé %s %s (%s). Je peux lui transférer votre demande si vous le souhaitez.",
				e.FirstName, e.LastName, e.Function), nil
		},
	}
}

func (t *Toolset) transferCall() Executor {
	return &tool{
		name: "transfer_call",
		decl: declaration("transfer_call",
			"Transfère l'appel en cours vers un conseiller humain. À utiliser en dernier recours ou à la demande explicite de l'appelant.",
			objectSchema(map[string]*genai.Schema{
				"employee_name": stringParam("Nom du conseiller destinataire, si identifié au préalable."),
				"reason":        stringParam("Motif du transfert."),
			}, "reason")),
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			t.recordEvent(ctx, call, fmt.Sprintf("Transfert demandé vers %q, motif : %s",
				valueOr(stringArg(args, "employee_name"), "le premier conseiller disponible"),
				stringArg(args, "reason")))
			return "Très bien, je transfère votre appel à un conseiller. Merci de patienter quelques instants.", nil
		},
	}
}

func (t *Toolset) requestQuote() Executor {
	return &tool{
		name: "request_quote",
		decl: declaration("request_quote",
			"Enregistre une demande de devis pour un prospect ou un client. Un conseiller recontactera l'appelant.",
			objectSchema(map[string]*genai.Schema{
				"full_name": stringParam("Nom complet de l'appelant."),
				"phone":     stringParam("Numéro de téléphone où recontacter l'appelant."),
				"need":      stringParam("Besoin exprimé, par exemple 'mutuelle santé famille'."),
			}, "full_name", "phone", "need")),
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			t.recordEvent(ctx, call, fmt.Sprintf("Demande de devis — %s, %s : %s",
				stringArg(args, "full_name"), stringArg(args, "phone"), stringArg(args, "need")))
			return "Votre demande de devis a bien été enregistrée. Un conseiller vous recontactera très prochainement.", nil
		},
	}
}

func (t *Toolset) logIssue() Executor {
	return &tool{
		name: "log_issue",
		decl: declaration("log_issue",
			"Consigne un problème ou une réclamation signalée par l'appelant pour suivi par l'équipe.",
			objectSchema(map[string]*genai.Schema{
				"description": stringParam("Description du problème signalé."),
			}, "description")),
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			t.recordEvent(ctx, call, "Signalement : "+stringArg(args, "description"))
			return "Votre signalement a bien été enregistré. Merci de nous l'avoir remonté.", nil
		},
	}
}

func (t *Toolset) recordCallFeedback() Executor {
	return &tool{
		name: "record_call_feedback",
		decl: declaration("record_call_feedback",
			"Enregistre la note de satisfaction de l'appelant en fin d'appel, de 1 (très insatisfait) à 5 (très satisfait), avec un commentaire facultatif.",
			objectSchema(map[string]*genai.Schema{
				"rating":  {Type: genai.TypeInteger, Description: "Note de satisfaction entre 1 et 5."},
				"comment": stringParam("Commentaire libre de l'appelant."),
			}, "rating")),
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			rating, ok := intArg(args, "rating")
			if !ok || rating < 1 || rating > 5 {
				return "Pouvez-vous me donner une note entre 1 et 5 ?", nil
			}
			if call.CallID != 0 {
				if err := t.recorder.RecordFeedback(ctx, call.CallID, rating, stringArg(args, "comment")); err != nil {
					t.logger.Warn("feedback recording failed", "call_id", call.CallID, "error", err)
				}
			}
			return "Merci beaucoup pour votre retour !", nil
		},
	}
}

func (t *Toolset) recordEvent(ctx context.Context, call *CallContext, message string) {
	if call.CallID == 0 {
		return
	}
	err := t.recorder.RecordAction(ctx, call.CallID, audit.Action{
		Type:    audit.ActionEvent,
		Message: message,
	})
	if err != nil {
		t.logger.Warn("event journaling failed", "call_id", call.CallID, "error", err)
	}
}
