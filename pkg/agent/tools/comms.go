package tools

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/artex-assurances/aria/pkg/notify"
)

const (
	callbackTimeLayout = "2006-01-02T15:04:05"

	msgMailNotConfigured = "Désolé, le service d'envoi d'e-mails n'est pas configuré. Je ne peux pas envoyer de confirmation écrite."
	msgMailFailed        = "Désolé, une erreur technique majeure est survenue lors de l'envoi de l'e-mail. Je vous planifie un rappel avec un conseiller pour assurer le suivi de votre demande."
	msgCalNotConfigured  = "Le service de calendrier n'est pas configuré. Je ne peux pas planifier de rappel."
	msgBadCallbackTime   = "Le format de date et d'heure est invalide. Veuillez utiliser le format ISO, par exemple '2024-12-25T14:30:00'."
)

func (t *Toolset) sendConfirmationEmail() Executor {
	return &tool{
		name: "send_confirmation_email",
		decl: declaration("send_confirmation_email",
			"Envoie un e-mail de confirmation au client confirmé, par exemple après une mise à jour de ses coordonnées.",
			objectSchema(map[string]*genai.Schema{
				"subject": stringParam("Objet de l'e-mail."),
				"body":    stringParam("Corps de l'e-mail, sans formule de politesse : elle est ajoutée automatiquement."),
			}, "subject", "body")),
		gated: true,
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			client, _ := call.Session.Confirmed()
			if client.Email == "" {
				return "Action impossible : aucune adresse e-mail n'est enregistrée dans votre dossier.", nil
			}
			if t.mailer == nil {
				return msgMailNotConfigured, nil
			}
			subject := stringArg(args, "subject")
			body := fmt.Sprintf("Bonjour %s %s,\n\n%s\n\nCordialement,\nARTEX Assurances",
				client.FirstName, client.LastName, stringArg(args, "body"))

			if err := t.mailer.Send(ctx, client.FullName(), client.Email, subject, body); err != nil {
				t.logger.Error("confirmation email failed", "call_id", call.CallID, "client_id", client.ID, "error", err)
				t.fallbackCallback(ctx, call, "Échec d'envoi d'un e-mail de confirmation, suivi à assurer")
				return msgMailFailed, nil
			}
			return fmt.Sprintf("Un e-mail de confirmation a été envoyé à %s.", client.Email), nil
		},
	}
}

// fallbackCallback books a next-morning advisor slot after a failed email so
// the promise in the failure message is kept. Best-effort.
func (t *Toolset) fallbackCallback(ctx context.Context, call *CallContext, reason string) {
	if t.scheduler == nil {
		return
	}
	client, ok := call.Session.Confirmed()
	if !ok {
		return
	}
	at := nextMorning(t.now())
	if _, err := t.scheduler.Schedule(ctx, notify.Callback{
		ClientName:  client.FullName(),
		ClientEmail: client.Email,
		Phone:       client.Phone,
		Reason:      reason,
		At:          at,
	}); err != nil {
		t.logger.Warn("fallback callback scheduling failed", "call_id", call.CallID, "error", err)
	}
}

// nextMorning is the next day at 10:00 in the caller's timezone.
func nextMorning(now time.Time) time.Time {
	next := now.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), 10, 0, 0, 0, now.Location())
}

func (t *Toolset) scheduleCallback() Executor {
	return &tool{
		name: "schedule_callback",
		decl: declaration("schedule_callback",
			"Planifie un rappel par un conseiller pour le client confirmé. Le paramètre 'datetime' DOIT être au format ISO 8601 exact 'AAAA-MM-JJTHH:MM:SS' ; convertissez toute date en langage naturel avant d'appeler cet outil.",
			objectSchema(map[string]*genai.Schema{
				"reason":   stringParam("Motif du rappel."),
				"datetime": stringParam("Date et heure du rappel au format 'AAAA-MM-JJTHH:MM:SS', par exemple '2024-12-25T14:30:00'."),
			}, "reason", "datetime")),
		gated: true,
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			if t.scheduler == nil {
				return msgCalNotConfigured, nil
			}
			client, _ := call.Session.Confirmed()

			at, err := time.ParseInLocation(callbackTimeLayout, stringArg(args, "datetime"), parisLocation())
			if err != nil {
				return msgBadCallbackTime, nil
			}
			if _, err := t.scheduler.Schedule(ctx, notify.Callback{
				ClientName:  client.FullName(),
				ClientEmail: client.Email,
				Phone:       client.Phone,
				Reason:      stringArg(args, "reason"),
				At:          at,
			}); err != nil {
				t.logger.Error("callback scheduling failed", "call_id", call.CallID, "client_id", client.ID, "error", err)
				return "Une erreur est survenue lors de la communication avec le service de calendrier.", nil
			}
			return fmt.Sprintf("J'ai planifié un rappel pour vous le %s. Un conseiller vous appellera.",
				at.Format("02/01/2006 à 15:04")), nil
		},
	}
}

func parisLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		return time.Local
	}
	return loc
}
