package usecase

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harel-coffee/ClimWIP-auto/internal/domain"
)

// CompanionPathResolver locates the file of a companion variable given a
// reference file path. Variables of one dataset conventionally live in
// parallel paths differing only in the variable token; getting the mapping
// wrong silently reads the wrong file, so the strategy is pluggable and
// unit-tested against the known templates.
type CompanionPathResolver func(refPath, refVar, companionVar string) (string, error)

// SubstitutionResolver is the default strategy. It substitutes the
// "<var>_" token in the file name and the "/<var>/" path segment in the
// directory. The delimiters keep the substitution from matching unrelated
// path segments that merely contain the variable name as a substring. It
// fails when neither substitution applies rather than return the reference
// path unchanged.
func SubstitutionResolver(refPath, refVar, companionVar string) (string, error) {
	dir, file := filepath.Split(refPath)
	newFile := strings.Replace(file, refVar+"_", companionVar+"_", 1)
	sep := string(filepath.Separator)
	newDir := strings.Replace(dir, sep+refVar+sep, sep+companionVar+sep, 1)
	if newFile == file && newDir == dir {
		return "", fmt.Errorf("%w: cannot derive %s path from %s",
			domain.ErrInvalidDerivation, companionVar, refPath)
	}
	return filepath.Join(newDir, newFile), nil
}
