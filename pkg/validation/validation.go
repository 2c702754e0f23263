// Package validation evaluates @Validate property annotations with
// go-playground/validator.
//
//	type SignupForm struct {
//		// @Validate("required,email")
//		Email string
//
//		// @Validate(rules="min=8", message="password is too short")
//		Password string
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/toyz/addendum/pkg/addendum"
)

// ValidateType is the annotation type name registered by RegisterTypes
const ValidateType = "Validation_Validate"

// Validate attaches validator rules to a property. The positional value and
// the rules property are joined.
type Validate struct {
	addendum.Annotation

	Value   string
	Rules   string
	Message string
}

// rules returns the combined validator tag
func (v *Validate) rules() string {
	parts := make([]string, 0, 2)
	for _, r := range []string{v.Value, v.Rules} {
		if r = strings.TrimSpace(r); r != "" {
			parts = append(parts, r)
		}
	}
	return strings.Join(parts, ",")
}

// RegisterTypes registers the Validate annotation type
func RegisterTypes(reg *addendum.Registry) error {
	_, err := addendum.Register[Validate](reg, ValidateType,
		addendum.WithDoc(`@Target("property")`),
		addendum.WithCheck(checkValidate),
	)
	return err
}

// checkValidate only rejects empty rules. Rule names are checked by the
// Validator, which knows the custom validations registered on it.
func checkValidate(inst *addendum.Instance, _ addendum.Target) error {
	v, ok := addendum.As[Validate](inst)
	if !ok {
		return fmt.Errorf("unexpected annotation %s", inst.TypeName())
	}
	if v.rules() == "" {
		return fmt.Errorf("no validation rules given")
	}
	return nil
}

// Rule is the validation attached to one property
type Rule struct {
	Property string
	Rules    string
	Message  string
}

// FieldError is one failed rule
type FieldError struct {
	Property string
	Tag      string
	Param    string
	Message  string
}

func (e FieldError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Property, e.Message)
	}
	if e.Param != "" {
		return fmt.Sprintf("%s failed %s=%s", e.Property, e.Tag, e.Param)
	}
	return fmt.Sprintf("%s failed %s", e.Property, e.Tag)
}

// Errors collects every failed rule of a validated object
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validator checks objects against the @Validate annotations of their class
type Validator struct {
	engine   *addendum.Engine
	validate *validator.Validate

	mu    sync.RWMutex
	rules map[string][]Rule
}

// New creates a validator reading annotations through engine
func New(engine *addendum.Engine) *Validator {
	return &Validator{
		engine:   engine,
		validate: validator.New(),
		rules:    make(map[string][]Rule),
	}
}

// RegisterValidation adds a custom validation usable from @Validate rules
func (v *Validator) RegisterValidation(tag string, fn validator.Func) error {
	return v.validate.RegisterValidation(tag, fn)
}

// Rules returns the validation rules declared on the properties of class,
// in declaration order. Results are cached per class.
func (v *Validator) Rules(class string) ([]Rule, error) {
	v.mu.RLock()
	rules, ok := v.rules[class]
	v.mu.RUnlock()
	if ok {
		return rules, nil
	}

	reflected, err := v.engine.Reflect(class)
	if err != nil {
		return nil, err
	}
	props, err := reflected.Properties()
	if err != nil {
		return nil, err
	}

	rules = []Rule{}
	for _, prop := range props {
		all, err := prop.AllAnnotations(ValidateType)
		if err != nil {
			return nil, err
		}
		for _, inst := range all {
			ann, _ := addendum.As[Validate](inst)
			if err := v.checkRules(ann.rules()); err != nil {
				return nil, &addendum.ConstraintError{Type: ValidateType, Target: prop.QualifiedName(), Err: err}
			}
			rules = append(rules, Rule{Property: prop.Name(), Rules: ann.rules(), Message: ann.Message})
		}
	}

	v.mu.Lock()
	v.rules[class] = rules
	v.mu.Unlock()
	return rules, nil
}

// checkRules rejects rules naming a validation that is neither built in nor
// registered on v. validator panics on unknown tags; failures and type
// related panics are left to Struct.
func (v *Validator) checkRules(rules string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprint(r)
			if strings.Contains(msg, "Undefined validation function") {
				err = fmt.Errorf("invalid rules %q: %s", rules, msg)
			}
		}
	}()
	_ = v.validate.Var("", rules)
	return nil
}

// Reset drops the cached rules
func (v *Validator) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rules = make(map[string][]Rule)
}

// Struct validates the fields of obj, a struct or pointer to one, against
// the rules of class. It returns Errors when any rule fails.
func (v *Validator) Struct(class string, obj any) error {
	rules, err := v.Rules(class)
	if err != nil {
		return err
	}

	value := reflect.ValueOf(obj)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return fmt.Errorf("cannot validate nil %s", value.Type())
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return fmt.Errorf("cannot validate %T: not a struct", obj)
	}

	var failed Errors
	for _, rule := range rules {
		field := value.FieldByName(rule.Property)
		if !field.IsValid() {
			return fmt.Errorf("%s has no field %s", value.Type(), rule.Property)
		}
		if !field.CanInterface() {
			return fmt.Errorf("field %s of %s is not exported", rule.Property, value.Type())
		}

		err := v.validate.Var(field.Interface(), rule.Rules)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate %s: %w", rule.Property, err)
		}
		for _, fe := range verrs {
			failed = append(failed, FieldError{
				Property: rule.Property,
				Tag:      fe.Tag(),
				Param:    fe.Param(),
				Message:  rule.Message,
			})
		}
	}

	if len(failed) > 0 {
		return failed
	}
	return nil
}
