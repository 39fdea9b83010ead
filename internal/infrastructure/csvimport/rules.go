package csvimport

import (
	"strconv"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FieldType is the expected type of a column value
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeUUID    FieldType = "uuid"
)

// FieldRule describes how one column is validated. Empty optional values
// skip every check.
type FieldRule struct {
	Column    string
	Type      FieldType
	Required  bool
	MinLength int
	MaxLength int
	MinValue  *decimal.Decimal
	MaxValue  *decimal.Decimal
	Unique    bool
	Custom    func(value string) error
}

// FieldRuleBuilder builds a FieldRule fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a string rule for column
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column, Type: TypeString}}
}

func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

func (b *FieldRuleBuilder) UUID() *FieldRuleBuilder {
	b.rule.Type = TypeUUID
	return b
}

// Length bounds the value length in characters. 0 leaves a side open.
func (b *FieldRuleBuilder) Length(minLen, maxLen int) *FieldRuleBuilder {
	b.rule.MinLength = minLen
	b.rule.MaxLength = maxLen
	return b
}

// Range bounds numeric values, inclusive
func (b *FieldRuleBuilder) Range(minVal, maxVal decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &minVal
	b.rule.MaxValue = &maxVal
	return b
}

// Min sets only the lower numeric bound
func (b *FieldRuleBuilder) Min(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

// Unique rejects a value repeated within the file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Custom adds a check run after the built-in ones
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.Custom = fn
	return b
}

func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// Validator checks rows against a fixed rule set and remembers values of
// Unique columns across rows.
type Validator struct {
	rules  []FieldRule
	seen   map[string]map[string]int
	errors *ErrorCollection
}

// NewValidator creates a validator reporting into errs
func NewValidator(rules []FieldRule, errs *ErrorCollection) *Validator {
	return &Validator{
		rules:  rules,
		seen:   make(map[string]map[string]int),
		errors: errs,
	}
}

// Columns returns the columns with a rule
func (v *Validator) Columns() []string {
	cols := make([]string, 0, len(v.rules))
	for _, r := range v.rules {
		cols = append(cols, r.Column)
	}
	return cols
}

// RequiredColumns returns the columns every file must have
func (v *Validator) RequiredColumns() []string {
	var cols []string
	for _, r := range v.rules {
		if r.Required {
			cols = append(cols, r.Column)
		}
	}
	return cols
}

// ValidateRow checks every rule against row and reports whether it passed
func (v *Validator) ValidateRow(row *Row) bool {
	ok := true
	for _, rule := range v.rules {
		if !v.validateField(row.Line, rule, row.Get(rule.Column)) {
			ok = false
		}
	}
	return ok
}

func (v *Validator) validateField(line int, rule FieldRule, value string) bool {
	if value == "" {
		if rule.Required {
			v.errors.Addf(line, rule.Column, CodeRequired, "", "%s is required", rule.Column)
			return false
		}
		return true
	}

	switch rule.Type {
	case TypeInt:
		if _, err := strconv.Atoi(value); err != nil {
			v.errors.Addf(line, rule.Column, CodeInvalidType, value, "%s must be a whole number", rule.Column)
			return false
		}
	case TypeDecimal:
		if _, err := decimal.NewFromString(value); err != nil {
			v.errors.Addf(line, rule.Column, CodeInvalidType, value, "%s must be a number", rule.Column)
			return false
		}
	case TypeUUID:
		if _, err := uuid.Parse(value); err != nil {
			v.errors.Addf(line, rule.Column, CodeInvalidType, value, "%s must be a UUID", rule.Column)
			return false
		}
	}

	ok := true
	if n := utf8.RuneCountInString(value); (rule.MinLength > 0 && n < rule.MinLength) || (rule.MaxLength > 0 && n > rule.MaxLength) {
		v.errors.Addf(line, rule.Column, CodeInvalidLength, "", "%s must be %s characters", rule.Column, lengthBounds(rule))
		ok = false
	}
	if rule.Type == TypeInt || rule.Type == TypeDecimal {
		d, _ := decimal.NewFromString(value)
		if (rule.MinValue != nil && d.LessThan(*rule.MinValue)) || (rule.MaxValue != nil && d.GreaterThan(*rule.MaxValue)) {
			v.errors.Addf(line, rule.Column, CodeOutOfRange, value, "%s must be %s", rule.Column, valueBounds(rule))
			ok = false
		}
	}
	if rule.Unique {
		if v.seen[rule.Column] == nil {
			v.seen[rule.Column] = make(map[string]int)
		}
		if first, dup := v.seen[rule.Column][value]; dup {
			v.errors.Addf(line, rule.Column, CodeDuplicateInFile, value, "duplicate of line %d", first)
			ok = false
		} else {
			v.seen[rule.Column][value] = line
		}
	}
	if ok && rule.Custom != nil {
		if err := rule.Custom(value); err != nil {
			v.errors.Addf(line, rule.Column, CodeRejected, value, "%s", err.Error())
			ok = false
		}
	}
	return ok
}

func lengthBounds(rule FieldRule) string {
	switch {
	case rule.MinLength > 0 && rule.MaxLength > 0:
		return strconv.Itoa(rule.MinLength) + " to " + strconv.Itoa(rule.MaxLength)
	case rule.MaxLength > 0:
		return "at most " + strconv.Itoa(rule.MaxLength)
	}
	return "at least " + strconv.Itoa(rule.MinLength)
}

func valueBounds(rule FieldRule) string {
	switch {
	case rule.MinValue != nil && rule.MaxValue != nil:
		return "between " + rule.MinValue.String() + " and " + rule.MaxValue.String()
	case rule.MaxValue != nil:
		return "at most " + rule.MaxValue.String()
	}
	return "at least " + rule.MinValue.String()
}
