package sim

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
)

var nameTokenPattern = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*(\[[0-9]+\])*$`)

// NameMustBeValid panics if the name is not a dot separated list of
// capitalized CamelCase elements. Elements of a series carry square-bracket
// indices, as in "Mesh.Router[3].InPort[1]".
func NameMustBeValid(name string) {
	if err := checkName(name); err != nil {
		log.Panicf("name %q is not valid: %v", name, err)
	}
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}

	for i, token := range strings.Split(name, ".") {
		if token == "" {
			return fmt.Errorf("element %d is empty", i)
		}

		if !nameTokenPattern.MatchString(token) {
			return fmt.Errorf("element %q is malformed", token)
		}
	}

	return nil
}

// BuildName builds a name from a parent name and an element name.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}

	return parentName + "." + elementName
}

// BuildNameWithIndex builds a name from a parent name, an element name and
// one or more indices.
func BuildNameWithIndex(
	parentName, elementName string,
	index ...int,
) string {
	var b strings.Builder

	b.WriteString(elementName)

	for _, i := range index {
		b.WriteString("[" + strconv.Itoa(i) + "]")
	}

	return BuildName(parentName, b.String())
}
