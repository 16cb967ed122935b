// Package prompt собирает промпт перевода с маркерами и извлекает перевод
// из свободного ответа модели.
package prompt

import (
	"regexp"
	"strings"

	"thirdspace/internal/failure"
)

const (
	MarkerStart = "<<<TRANSLATION>>>"
	MarkerEnd   = "<<<END_TRANSLATION>>>"
	// Separator разделяет абзацы многоабзацного текста в запросе и ответе.
	Separator = "%%"

	// LanguagePlaceholder заменяется в шаблоне на целевой язык.
	LanguagePlaceholder = "{{targetLang}}"
)

// DefaultTemplate - системная инструкция, если свой шаблон не задан.
const DefaultTemplate = `You are a professional {{targetLang}} native translator who needs to fluently translate text into {{targetLang}}.

## Translation Rules
1. Output only the translated content, wrapped by the required markers and nothing else
2. The returned translation must maintain exactly the same number of paragraphs and format as the original text
3. If the text contains HTML tags, consider where the tags should be placed in the translation while maintaining fluency
4. For content that should not be translated (such as proper nouns, code, etc.), keep the original text.
5. If input contains %%, use %% in your output, if input has no %%, don't use %% in your output

## OUTPUT FORMAT:
- **Single paragraph input** -> Output translation directly (no separators, no extra text)
- **Multi-paragraph input** -> Use %% as paragraph separator between translations

## Examples
### Multi-paragraph Input:
Paragraph A
%%
Paragraph B
%%
Paragraph C

### Multi-paragraph Output:
Translation A
%%
Translation B
%%
Translation C

### Single paragraph Input:
Single paragraph content

### Single paragraph Output:
Direct translation without separators`

// protocolSection добавляется к любой инструкции, в том числе к своей:
// Decode должен всегда найти перевод.
const protocolSection = `

## Marking Requirement
Wrap the final translation between ` + MarkerStart + ` and ` + MarkerEnd + `. Each marker must appear exactly once. Output nothing outside the markers.
Paragraphs of multi-paragraph input are separated by lines containing only ` + Separator + `; keep the same separators in the translation.`

var paragraphBreak = regexp.MustCompile(`\r?\n(?:[ \t]*\r?\n)+`)

// Encoded - исходящий промпт: системная инструкция и текст пользователя.
type Encoded struct {
	System string
	User   string
}

// Codec собирает промпты по шаблону инструкции.
type Codec struct {
	template string
}

// NewCodec создаёт кодек. Пустой шаблон - DefaultTemplate.
func NewCodec(template string) *Codec {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate
	}
	return &Codec{template: template}
}

// Encode собирает промпт по шаблону по умолчанию.
func Encode(sourceText, targetLanguage string) (Encoded, error) {
	return NewCodec("").Encode(sourceText, targetLanguage)
}

// Encode собирает промпт перевода sourceText на targetLanguage.
func (c *Codec) Encode(sourceText, targetLanguage string) (Encoded, error) {
	if strings.TrimSpace(sourceText) == "" {
		return Encoded{}, failure.New(failure.EmptyInput, "source text is empty")
	}

	system := strings.ReplaceAll(c.template, LanguagePlaceholder, targetLanguage) + protocolSection

	user := sourceText
	if IsMultiParagraph(sourceText) {
		user = strings.Join(Paragraphs(sourceText), "\n"+Separator+"\n")
	}

	return Encoded{System: system, User: user}, nil
}

// Decode извлекает перевод между маркерами. Пустой перевод - допустимый ответ.
func Decode(raw string) (string, error) {
	start := strings.Index(raw, MarkerStart)
	if start < 0 {
		return "", failure.Malformed("missing start marker", raw)
	}
	start += len(MarkerStart)

	end := strings.Index(raw[start:], MarkerEnd)
	if end < 0 {
		return "", failure.Malformed("missing end marker", raw)
	}

	return strings.TrimSpace(raw[start : start+end]), nil
}

// Paragraphs делит текст по пустым строкам. Несколько пустых строк подряд -
// одна граница. У абзацев срезаются только переводы строк по краям, отступы
// и пробелы внутри остаются как есть. Абзацы из одних пробелов пропускаются.
func Paragraphs(text string) []string {
	parts := paragraphBreak.Split(text, -1)
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, strings.Trim(p, "\r\n"))
	}
	return out
}

// IsMultiParagraph сообщает, больше ли в тексте одного абзаца.
func IsMultiParagraph(text string) bool {
	return len(Paragraphs(text)) > 1
}

// RestoreParagraphs заменяет строки-разделители перевода обратно на пустые строки.
func RestoreParagraphs(text string) string {
	lines := strings.Split(text, "\n")

	var paragraphs []string
	var current []string
	flush := func() {
		p := strings.Trim(strings.Join(current, "\n"), "\r\n")
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
		current = current[:0]
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == Separator {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}
