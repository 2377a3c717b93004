package dsl

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ja"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	jaTranslations "github.com/go-playground/validator/v10/translations/ja"

	"github.com/reoring/utilz/i18n"
	"github.com/reoring/utilz/internal/structkey"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("dsl: translator not found")

// Engine bundles a validator instance with its message catalogs. Schemas built
// without WithEngine share Default().
type Engine struct {
	validate *validator.Validate
	trans    map[string]ut.Translator
}

// EngineOption tunes NewEngine.
type EngineOption func(*validator.Validate)

// WithValidatorOptions forwards options to validator.New.
func WithValidatorOptions(opts ...validator.Option) EngineOption {
	return func(v *validator.Validate) {
		for _, o := range opts {
			o(v)
		}
	}
}

// NewEngine constructs an Engine with English and Japanese translations. Field
// names in namespaces are the JSON keys used by issue paths.
func NewEngine(opts ...EngineOption) (*Engine, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	for _, o := range opts {
		o(validate)
	}
	validate.RegisterTagNameFunc(func(sf reflect.StructField) string {
		return structkey.Resolve(sf)
	})

	enLang, jaLang := en.New(), ja.New()
	uni := ut.New(enLang, enLang, jaLang)
	e := &Engine{validate: validate, trans: map[string]ut.Translator{}}
	for lang, register := range map[string]func(*validator.Validate, ut.Translator) error{
		"en": enTranslations.RegisterDefaultTranslations,
		"ja": jaTranslations.RegisterDefaultTranslations,
	} {
		tr, ok := uni.GetTranslator(lang)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTranslatorNotFound, lang)
		}
		if err := register(validate, tr); err != nil {
			return nil, fmt.Errorf("dsl: register %s translations: %w", lang, err)
		}
		e.trans[lang] = tr
	}
	return e, nil
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine.
func Default() *Engine {
	defaultOnce.Do(func() {
		e, err := NewEngine()
		if err != nil {
			panic(err)
		}
		defaultEngine = e
	})
	return defaultEngine
}

// Validator exposes the underlying validator for registrations this package
// does not wrap (struct-level rules, custom types).
func (e *Engine) Validator() *validator.Validate { return e.validate }

// RegisterValidation adds a tag with the message template used for every
// language. "{0}" is replaced by the field name, "{1}" by the tag parameter.
func (e *Engine) RegisterValidation(tag string, fn validator.Func, message string) error {
	if err := e.validate.RegisterValidation(tag, fn); err != nil {
		return err
	}
	for _, tr := range e.trans {
		err := e.validate.RegisterTranslation(tag, tr,
			func(t ut.Translator) error {
				return t.Add(tag, message, true)
			},
			func(t ut.Translator, fe validator.FieldError) string {
				msg, err := t.T(fe.Tag(), fe.Field(), fe.Param())
				if err != nil {
					return fe.Error()
				}
				return msg
			},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// translator returns the catalog for the active i18n language.
func (e *Engine) translator() ut.Translator {
	if tr, ok := e.trans[i18n.Language()]; ok {
		return tr
	}
	return e.trans["en"]
}

// valueLabel stands in for the field name of single-value validations.
var valueLabel = map[string]string{"en": "Value", "ja": "値"}

func (e *Engine) message(fe validator.FieldError) string {
	msg := fe.Translate(e.translator())
	if msg == fe.Error() {
		return i18n.T("invalid_input", nil)
	}
	if fe.Field() == "" {
		label, ok := valueLabel[i18n.Language()]
		if !ok {
			label = valueLabel["en"]
		}
		msg = label + msg
	}
	return strings.TrimSpace(msg)
}
