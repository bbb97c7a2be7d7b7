package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidJSON reports a payload that is not a JSON object. Its text is
// the wire-visible error message.
var ErrInvalidJSON = errors.New("Invalid JSON format")

// UnknownTypeError reports an unrecognised type discriminator.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("Invalid message type: %s", e.Type)
}

// ValidationError reports per-field schema violations.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("Validation error: {%s}", strings.Join(parts, "; "))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// schemas maps the type discriminator onto a fresh typed frame.
var schemas = map[string]func() Frame{
	TypeRegister:        func() Frame { return &Register{} },
	TypeLogin:           func() Frame { return &Login{} },
	TypeCreateGroup:     func() Frame { return &CreateGroup{} },
	TypePrivateMessage:  func() Frame { return &PrivateMessage{} },
	TypeGroupMessage:    func() Frame { return &GroupMessage{} },
	TypeGetUserContacts: func() Frame { return &GetUserContacts{} },
	TypeJoin:            func() Frame { return &Join{} },
	TypeOffer:           func() Frame { return &Offer{} },
	TypeAnswer:          func() Frame { return &Answer{} },
	TypeICECandidate:    func() Frame { return &ICECandidate{} },
	TypeLeave:           func() Frame { return &Leave{} },
	TypeCreateRoom:      func() Frame { return &CreateRoom{} },
}

// Decode parses one inbound payload: envelope unmarshal, type lookup,
// typed unmarshal, schema validation. The returned error is ErrInvalidJSON,
// *UnknownTypeError, or *ValidationError; its text is safe to echo to the
// client as an error frame.
func Decode(raw []byte) (Frame, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, ErrInvalidJSON
	}

	newFrame, ok := schemas[envelope.Type]
	if !ok {
		return nil, &UnknownTypeError{Type: envelope.Type}
	}

	frame := newFrame()
	if err := json.Unmarshal(raw, frame); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{Fields: map[string]string{
				typeErr.Field: fmt.Sprintf("expected %s", typeErr.Type),
			}}
		}
		return nil, ErrInvalidJSON
	}

	if err := validate.Struct(frame); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make(map[string]string, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields[jsonFieldName(frame, fe.StructField())] = fieldMessage(fe)
			}
			return nil, &ValidationError{Fields: fields}
		}
		return nil, fmt.Errorf("failed to validate frame: %w", err)
	}

	return frame, nil
}

// jsonFieldName resolves a struct field to its wire name so validation
// messages speak the client's vocabulary.
func jsonFieldName(frame Frame, structField string) string {
	t := reflect.TypeOf(frame)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" {
			return tag
		}
	}
	return structField
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("shorter than minimum length %s", fe.Param())
	case "max":
		return fmt.Sprintf("longer than maximum length %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
