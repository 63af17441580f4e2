// Package format limpa o texto gerado pelo modelo antes de devolvê-lo ao cliente.
package format

import (
	"regexp"
	"strings"
	"unicode"
)

// RealTimePhrase dispara a substituição pelo aviso fixo quando aparece no texto.
const RealTimePhrase = "I don't have access to real-time information"

// RealTimeDisclaimer é devolvido no lugar de qualquer resposta que contenha RealTimePhrase.
const RealTimeDisclaimer = "I apologize, but I don't have access to real-time information. " +
	"Please verify any time-sensitive information from reliable sources."

var (
	tagPattern       = regexp.MustCompile(`<[^>]+>`)
	asteriskPattern  = regexp.MustCompile(`\*+`)
	codeBlockPattern = regexp.MustCompile("(?s)```([\\p{L}\\p{N}_]+)?\\n(.*?)```")
)

// Response aplica o pipeline de limpeza na ordem: tags, asteriscos, aviso de
// tempo real, blocos de código, espaços, quebras após ". " e trim.
//
// A quebra após ". " é ingênua e também quebra abreviações e números decimais.
func Response(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = asteriskPattern.ReplaceAllString(text, "")

	if strings.Contains(text, RealTimePhrase) {
		return RealTimeDisclaimer
	}

	text = codeBlockPattern.ReplaceAllString(text, "${2}")
	text = collapseSpaces(text)
	text = strings.ReplaceAll(text, ". ", ".\n")

	return strings.TrimSpace(text)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, isSpace), " ")
}

// isSpace inclui os separadores de informação U+001C..U+001F, que também
// contam como espaço em branco no texto Unicode.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
