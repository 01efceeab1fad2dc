package tools

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/artex-assurances/aria/pkg/agent/directory"
)

const msgContractNotYours = "Ce contrat n'est pas rattaché à votre dossier. Je ne peux pas vous communiquer d'informations à son sujet."

func (t *Toolset) listClientContracts() Executor {
	return &tool{
		name: "list_client_contracts",
		decl: declaration("list_client_contracts",
			"Liste tous les contrats associés au client confirmé.",
			objectSchema(map[string]*genai.Schema{})),
		gated: true,
		run: func(ctx context.Context, call *CallContext, _ map[string]any) (string, error) {
			client, _ := call.Session.Confirmed()
			contracts, err := t.dir.ContractsByClient(ctx, client.ID)
			if err != nil {
				return "", fmt.Errorf("list contracts: %w", err)
			}
			if len(contracts) == 0 {
				return fmt.Sprintf("Aucun contrat trouvé pour %s %s.", client.FirstName, client.LastName), nil
			}
			var b strings.Builder
			b.WriteString(fmt.Sprintf("Voici les contrats pour %s %s :", client.FirstName, client.LastName))
			for _, c := range contracts {
				b.WriteString(fmt.Sprintf("\n- Contrat réf %s, statut : %s", c.Reference, c.Status))
			}
			return b.String(), nil
		},
	}
}

// ownedContract resolves a reference and enforces that it belongs to the
// confirmed client. (nil, "") means found and owned; otherwise the message
// explains the refusal.
func (t *Toolset) ownedContract(ctx context.Context, call *CallContext, reference string) (*directory.Contract, string, error) {
	if reference == "" {
		return nil, "Pouvez-vous me donner la référence du contrat ?", nil
	}
	client, _ := call.Session.Confirmed()
	contract, err := t.dir.ContractByReference(ctx, reference)
	if err != nil {
		return nil, "", fmt.Errorf("contract by reference: %w", err)
	}
	if contract == nil {
		return nil, fmt.Sprintf("Aucun contrat avec la référence %s n'a été trouvé.", reference), nil
	}
	if contract.ClientID != client.ID {
		t.logger.Warn("contract access refused", "client_id", client.ID, "reference", reference)
		return nil, msgContractNotYours, nil
	}
	return contract, "", nil
}

func (t *Toolset) getContractDetails() Executor {
	return &tool{
		name: "get_contract_details",
		decl: declaration("get_contract_details",
			"Donne les détails d'un contrat du client confirmé à partir de sa référence.",
			objectSchema(map[string]*genai.Schema{
				"reference": stringParam("Référence du contrat, par exemple CONTRAT-A."),
			}, "reference")),
		gated: true,
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			contract, msg, err := t.ownedContract(ctx, call, stringArg(args, "reference"))
			if err != nil || contract == nil {
				return msg, err
			}
			var b strings.Builder
			b.WriteString(fmt.Sprintf("Détails du contrat %s : statut %s", contract.Reference, contract.Status))
			if !contract.StartDate.IsZero() {
				b.WriteString(fmt.Sprintf(", débuté le %s", contract.StartDate.Format("02/01/2006")))
			}
			if contract.EndDate != nil {
				b.WriteString(fmt.Sprintf(", se terminant le %s", contract.EndDate.Format("02/01/2006")))
			}
			b.WriteString(".")
			return b.String(), nil
		},
	}
}

func (t *Toolset) getContractCompanyInfo() Executor {
	return &tool{
		name: "get_contract_company_info",
		decl: declaration("get_contract_company_info",
			"Indique quelle compagnie d'assurance gère un contrat du client confirmé.",
			objectSchema(map[string]*genai.Schema{
				"reference": stringParam("Référence du contrat."),
			}, "reference")),
		gated: true,
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			contract, msg, err := t.ownedContract(ctx, call, stringArg(args, "reference"))
			if err != nil || contract == nil {
				return msg, err
			}
			company, err := t.dir.CompanyByID(ctx, contract.CompanyID)
			if err != nil {
				return "", fmt.Errorf("company by id: %w", err)
			}
			if company == nil {
				return fmt.Sprintf("Je n'ai pas trouvé la compagnie qui gère le contrat %s.", contract.Reference), nil
			}
			reply := fmt.Sprintf("Le contrat %s est géré par %s", contract.Reference, company.Name)
			if company.PhoneNumber != "" {
				reply += fmt.Sprintf(" (téléphone : %s)", company.PhoneNumber)
			}
			return reply + ".", nil
		},
	}
}

func (t *Toolset) getContractFormulaDetails() Executor {
	return &tool{
		name: "get_contract_formula_details",
		decl: declaration("get_contract_formula_details",
			"Décrit la formule de garanties d'un contrat du client confirmé : nom, description et tarif mensuel.",
			objectSchema(map[string]*genai.Schema{
				"reference": stringParam("Référence du contrat."),
			}, "reference")),
		gated: true,
		run: func(ctx context.Context, call *CallContext, args map[string]any) (string, error) {
			contract, msg, err := t.ownedContract(ctx, call, stringArg(args, "reference"))
			if err != nil || contract == nil {
				return msg, err
			}
			formula, err := t.dir.FormulaByID(ctx, contract.FormulaID)
			if err != nil {
				return "", fmt.Errorf("formula by id: %w", err)
			}
			if formula == nil {
				return fmt.Sprintf("Je n'ai pas trouvé la formule du contrat %s.", contract.Reference), nil
			}
			reply := fmt.Sprintf("Le contrat %s est basé sur la formule '%s'", contract.Reference, formula.Name)
			if formula.Description != "" {
				reply += " : " + strings.TrimSuffix(formula.Description, ".")
			}
			reply += fmt.Sprintf(". Tarif : %s par mois.", formatEuros(formula.PriceCents))
			return reply, nil
		},
	}
}

func formatEuros(cents int64) string {
	return fmt.Sprintf("%d,%02d €", cents/100, cents%100)
}
