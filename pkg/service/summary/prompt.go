package summary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/secmon-lab/techinsights/pkg/domain/model"
)

const (
	maxSummaryTextRunes     = 1000
	maxExplainFragmentRunes = 200
	maxExplanationWords     = 20
)

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func buildSummaryPrompt(texts []string) string {
	var sb strings.Builder

	sb.WriteString("Actúa como un analista experto en Tecnología y Economía Global.\n")
	sb.WriteString("Analiza las siguientes noticias recientes (fragmentos):\n\n")
	for _, t := range texts {
		sb.WriteString("- ")
		sb.WriteString(truncateRunes(t, maxSummaryTextRunes))
		sb.WriteString("...\n")
	}
	sb.WriteString("\nTAREA:\n")
	sb.WriteString("1. Identifica los 3 temas principales que conectan la tecnología con la economía actual.\n")
	sb.WriteString("2. Busca correlaciones ocultas: ¿Cómo afectan los avances técnicos a los mercados o viceversa?\n")
	sb.WriteString("3. Genera un \"Resumen Ejecutivo de Insights\" breve pero denso en información.\n\n")
	sb.WriteString("Salida en formato Markdown amigable.\n")

	return sb.String()
}

func buildExplainPrompt(query string, insights []*model.Insight) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Usuario busca: %q\n\n", query)
	sb.WriteString("Tengo estos artículos encontrados:\n")
	for i, x := range insights {
		fmt.Fprintf(&sb, "Item %d: Title: '%s', Content Fragment: '%s...'\n",
			i, x.Title, truncateRunes(x.Content, maxExplainFragmentRunes))
	}
	fmt.Fprintf(&sb, "\nPara cada Item (0 a %d), explica en UNA sola frase corta (máx %d palabras) por qué este artículo es relevante para la búsqueda del usuario.\n",
		len(insights)-1, maxExplanationWords)
	sb.WriteString("No repitas el título. Ve al grano. Ejemplo: \"Menciona específicamente el impacto de la inflación...\"\n\n")
	sb.WriteString("Formato de salida requerido (una línea por item):\n")
	sb.WriteString("0: explicación...\n")
	sb.WriteString("1: explicación...\n")

	return sb.String()
}

// parseExplanations maps "<i>: text" lines to positions. The first line for an index wins and
// indices without a usable line get FallbackExplanation.
func parseExplanations(text string, n int) []string {
	found := make(map[int]string, n)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		head, body, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(head))
		if err != nil || idx < 0 || idx >= n {
			continue
		}
		if _, exists := found[idx]; exists {
			continue
		}
		body = limitWords(strings.TrimSpace(body), maxExplanationWords)
		if body == "" {
			continue
		}
		found[idx] = body
	}

	explanations := make([]string, n)
	for i := range explanations {
		if s, ok := found[i]; ok {
			explanations[i] = s
		} else {
			explanations[i] = FallbackExplanation
		}
	}
	return explanations
}

func limitWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ")
}
