package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dict = map[string]map[string]string{
	"en": {
		"invalid_type":    "Expected {expected}, received {received}",
		"not_instance":    "Input not instance of {expected}",
		"required":        "Required",
		"unknown_key":     "Unrecognized key: {key}",
		"too_small":       "Too small: expected {expected} items, received {received}",
		"too_big":         "Too big: expected {expected} items, received {received}",
		"invalid_literal": "Invalid literal value, expected {expected}",
		"invalid_enum":    "Invalid enum value. Expected {options}, received '{received}'",
		"invalid_json":    "Invalid JSON",
		"invalid_yaml":    "Invalid YAML",
		"invalid_input":   "Invalid input",
	},
	"ja": {
		"invalid_type":    "{expected}型が必要ですが、{received}を受け取りました",
		"not_instance":    "{expected}のインスタンスではありません",
		"required":        "必須です",
		"unknown_key":     "未知のキーです: {key}",
		"too_small":       "要素数が不足しています: {expected}件必要ですが{received}件です",
		"too_big":         "要素数が多すぎます: {expected}件までですが{received}件です",
		"invalid_literal": "リテラル値が不正です。{expected}が必要です",
		"invalid_enum":    "列挙値が不正です。{options}のいずれかが必要ですが'{received}'を受け取りました",
		"invalid_json":    "JSONとして不正です",
		"invalid_yaml":    "YAMLとして不正です",
		"invalid_input":   "入力が不正です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msgs, ok := dict[t.lang]
	if !ok {
		msgs = dict["en"]
	}
	tmpl, ok := msgs[code]
	if !ok {
		return code
	}
	for k, v := range data {
		tmpl = strings.ReplaceAll(tmpl, "{"+k+"}", v)
	}
	return tmpl
}

var (
	mu                sync.RWMutex
	currentLang                  = "en"
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	defer mu.Unlock()
	currentLang = lang
	currentTranslator = dictTranslator{lang: lang}
}

// Language reports the active language. Engines with their own message
// catalogs (the validator translations) follow it.
func Language() string {
	mu.RLock()
	defer mu.RUnlock()
	return currentLang
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	mu.Lock()
	defer mu.Unlock()
	if tr == nil {
		currentTranslator = dictTranslator{lang: currentLang}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
