// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hay-kot/criterio"
)

var (
	languageTagRe = regexp.MustCompile(`^[A-Za-z]{2,3}(-[A-Za-z0-9]{2,8})*$`)
	ruleIDRe      = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

// LanguageTag validates a BCP 47 style language tag such as "en", "en-US" or
// "zxx".
func LanguageTag(tag string) error {
	if strings.TrimSpace(tag) == "" {
		return fmt.Errorf("language is required")
	}
	if !languageTagRe.MatchString(tag) {
		return fmt.Errorf("invalid language tag %q", tag)
	}
	return nil
}

// LanguageTagField returns a criterio validator for language tags.
func LanguageTagField(field, tag string) error {
	return criterio.Run(field, tag, LanguageTag)
}

// RuleID validates a checker rule identifier: upper case letters, digits and
// underscores, starting with a letter.
func RuleID(id string) error {
	if id == "" {
		return fmt.Errorf("rule id is required")
	}
	if !ruleIDRe.MatchString(id) {
		return fmt.Errorf("invalid rule id %q", id)
	}
	return nil
}

// RuleIDField returns a criterio validator for rule identifiers.
func RuleIDField(field, id string) error {
	return criterio.Run(field, id, RuleID)
}
