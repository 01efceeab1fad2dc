package tools

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/artex-assurances/aria/pkg/agent/directory"
)

func (t *Toolset) getClientDetails() Executor {
	return &tool{
		name: "get_client_details",
		decl: declaration("get_client_details",
			"Donne les informations personnelles du client actuellement identifié et confirmé.",
			objectSchema(map[string]*genai.Schema{})),
		gated: true,
		run: func(_ context.Context, call *CallContext, _ map[string]any) (string, error) {
			client, _ := call.Session.Confirmed()
			return fmt.Sprintf("Détails pour %s %s (ID : %d) : e-mail : %s, téléphone : %s, adresse : %s, %s %s.",
				client.FirstName, client.LastName, client.ID,
				valueOr(client.Email, "non renseigné"),
				valueOr(client.Phone, "non renseigné"),
				valueOr(client.Address, "non renseignée"),
				client.PostalCode, client.City), nil
		},
	}
}

func (t *Toolset) updateContactInformation() Executor {
	return &tool{
		name: "update_contact_information",
		decl: declaration("update_contact_information",
			"Met à jour les coordonnées du client confirmé. Seuls les champs fournis sont modifiés.",
			objectSchema(map[string]*genai.Schema{
				"address":     stringParam("Nouvelle adresse postale."),
				"postal_code": stringParam("Nouveau code postal."),
				"city":        stringParam("Nouvelle ville."),
				"phone":       stringParam("Nouveau numéro de téléphone."),
				"email":       stringParam("Nouvelle adresse e-mail."),
			})),
		gated: true,
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			client, _ := call.Session.Confirmed()
			update := directory.ContactUpdate{
				Address:    optStringArg(args, "address"),
				PostalCode: optStringArg(args, "postal_code"),
				City:       optStringArg(args, "city"),
				Phone:      optStringArg(args, "phone"),
				Email:      optStringArg(args, "email"),
			}
			if update.IsEmpty() {
				return "Aucune information à modifier n'a été fournie.", nil
			}
			changed, err := t.dir.UpdateClientContact(ctx, client.ID, update)
			if err != nil {
				t.logger.Error("contact update failed", "client_id", client.ID, "error", err)
				return "Une erreur est survenue lors de la mise à jour des informations.", nil
			}
			if !changed {
				return "Aucune information n'a été modifiée.", nil
			}
			if fresh, err := t.dir.ClientByID(ctx, client.ID); err == nil && fresh != nil {
				if err := call.Session.Refresh(ctx, *fresh); err != nil {
					t.logger.Warn("context refresh failed", "client_id", client.ID, "error", err)
				}
			}
			return "Les informations de contact ont été mises à jour avec succès.", nil
		},
	}
}

func (t *Toolset) getClientInteractionHistory() Executor {
	return &tool{
		name: "get_client_interaction_history",
		decl: declaration("get_client_interaction_history",
			"Donne un résumé des dernières interactions enregistrées pour le client confirmé.",
			objectSchema(map[string]*genai.Schema{})),
		gated: true,
		run: func(ctx context.Context, call *CallContext, _ map[string]any) (string, error) {
			client, _ := call.Session.Confirmed()
			events, err := t.dir.ClientHistory(ctx, client.ID, 10)
			if err != nil {
				return "", fmt.Errorf("client history: %w", err)
			}
			if len(events) == 0 {
				return fmt.Sprintf("Aucune interaction enregistrée pour %s %s.", client.FirstName, client.LastName), nil
			}
			var b strings.Builder
			b.WriteString("Voici un résumé des dernières interactions :")
			for _, ev := range events {
				b.WriteString(fmt.Sprintf("\n- %s : %s", formatEventDate(ev), ev.Comment))
			}
			return b.String(), nil
		},
	}
}

func (t *Toolset) checkUpcomingAppointments() Executor {
	return &tool{
		name: "check_upcoming_appointments",
		decl: declaration("check_upcoming_appointments",
			"Vérifie si le client confirmé a des rendez-vous planifiés à venir.",
			objectSchema(map[string]*genai.Schema{})),
		gated: true,
		run: func(ctx context.Context, call *CallContext, _ map[string]any) (string, error) {
			client, _ := call.Session.Confirmed()
			events, err := t.dir.UpcomingAppointments(ctx, client.ID, t.now())
			if err != nil {
				return "", fmt.Errorf("upcoming appointments: %w", err)
			}
			if len(events) == 0 {
				return "Vous n'avez aucun rendez-vous à venir.", nil
			}
			var b strings.Builder
			b.WriteString("Vous avez les rendez-vous à venir suivants :")
			for _, ev := range events {
				b.WriteString(fmt.Sprintf("\n- %s : %s", formatEventDate(ev), ev.Comment))
			}
			return b.String(), nil
		},
	}
}

func (t *Toolset) summarizeAdvisoryDuty() Executor {
	return &tool{
		name: "summarize_advisory_duty",
		decl: declaration("summarize_advisory_duty",
			"Résume le devoir de conseil enregistré pour le client confirmé : sa situation, son budget et ses besoins lors de la souscription.",
			objectSchema(map[string]*genai.Schema{})),
		gated: true,
		run: func(ctx context.Context, call *CallContext, _ map[string]any) (string, error) {
			client, _ := call.Session.Confirmed()
			duty, err := t.dir.AdvisoryDutyByClient(ctx, client.ID)
			if err != nil {
				return "", fmt.Errorf("advisory duty: %w", err)
			}
			if duty == nil {
				return "Aucun devoir de conseil n'est enregistré pour votre dossier.", nil
			}
			var needs []string
			for _, n := range []string{duty.Need1, duty.Need2, duty.Need3} {
				if n != "" {
					needs = append(needs, n)
				}
			}
			var b strings.Builder
			b.WriteString("Pour vous rassurer sur le choix de votre contrat, voici ce que nous avions noté lors de la souscription :")
			if duty.ClientSituation != "" {
				b.WriteString(fmt.Sprintf("\n- Situation : %s", duty.ClientSituation))
			}
			if duty.Budget != "" {
				b.WriteString(fmt.Sprintf("\n- Budget : %s", duty.Budget))
			}
			if len(needs) > 0 {
				b.WriteString(fmt.Sprintf("\n- Besoins exprimés : %s", strings.Join(needs, ", ")))
			}
			return b.String(), nil
		},
	}
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
