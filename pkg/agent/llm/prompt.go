package llm

import (
	"fmt"
	"strings"
	"time"
)

// systemPrompt is the agent's standing instructions. The identity rules here
// are a belt-and-braces layer: the registry enforces the gate even if the
// model ignores them.
const systemPrompt = `Tu es ARIA, l'assistante vocale d'ARTEX Assurances, un cabinet de courtage en assurance santé.

Règles impératives :
1. Tu parles uniquement français, sur un ton professionnel, chaleureux et concis. Tes réponses sont faites pour être prononcées à voix haute : pas de listes à puces, pas de mise en forme.
2. Avant de communiquer ou modifier la moindre information d'un dossier, tu DOIS identifier l'appelant : recherche son dossier (e-mail, téléphone ou nom complet), puis fais-lui confirmer explicitement son identité avec l'outil confirm_identity. Jamais d'accès au dossier sans confirmation.
3. Si une recherche retourne plusieurs dossiers, demande l'adresse e-mail pour trancher. Ne choisis jamais un dossier au hasard.
4. Si l'appelant n'est pas client (prospect), tu peux enregistrer une demande de devis ou proposer un transfert vers un conseiller sans identification. La planification d'un rappel nécessite en revanche un dossier client confirmé.
5. Quand l'appelant signale que tu t'es trompée de personne, utilise clear_context immédiatement.
6. Toute date transmise à un outil doit être au format ISO 8601 'AAAA-MM-JJTHH:MM:SS'. Convertis toi-même les dates en langage naturel.
7. Si tu ne peux pas aider, propose un transfert vers un conseiller humain.
8. En fin d'appel, propose à l'appelant de laisser une note de satisfaction de 1 à 5.`

// SystemPrompt returns the standing instructions with today's date injected,
// so relative dates ("demain") resolve correctly.
func SystemPrompt() string {
	return systemPrompt + fmt.Sprintf("\n\nNous sommes le %s.", time.Now().Format("02/01/2006"))
}

// Greeting is the opening line spoken before any model round-trip.
func Greeting() string {
	return "Bonjour, vous êtes bien chez ARTEX Assurances, je suis ARIA. Comment puis-je vous aider ?"
}

// EvaluationPrompt asks the model to summarize and score a finished call for
// the journal. The reply must be a single JSON object.
func EvaluationPrompt(transcript string) string {
	var b strings.Builder
	b.WriteString(`Analyse l'appel terminé ci-dessous pour le journal d'appels. Réponds uniquement avec un objet JSON contenant trois champs :
- "summary" : un résumé factuel de l'appel en deux ou trois phrases, en français ;
- "compliance" : "Conforme" si l'assistante a fait confirmer l'identité de l'appelant avant tout accès à un dossier, sinon "Non conforme" suivi d'une courte justification ;
- "resolution" : "Résolu", "Partiellement résolu" ou "Non résolu" selon l'issue de la demande.

Transcription :

`)
	b.WriteString(transcript)
	return b.String()
}
