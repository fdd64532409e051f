package templates

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"smeta-backend/internal/constants"
	"smeta-backend/internal/storage"
)

var (
	ErrEmptyTemplateName     = errors.New("не указано название шаблона")
	ErrNoItems               = errors.New("в шаблоне нет позиций")
	ErrEmptyGenericName      = errors.New("у позиции не указано название")
	ErrReservedVariableName  = errors.New("имя переменной зарезервировано")
	ErrInvalidVariableName   = errors.New("недопустимое имя переменной")
	ErrDuplicateVariableName = errors.New("имя переменной уже используется")
)

var varNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationError указывает на позицию шаблона, не прошедшую проверку.
type ValidationError struct {
	Index   int
	VarName string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.VarName != "" {
		return fmt.Sprintf("позиция %d: %v: %q", e.Index+1, e.Err, e.VarName)
	}
	return fmt.Sprintf("позиция %d: %v", e.Index+1, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate проверяет шаблон перед сохранением. Ссылки на переменные в формулах
// не проверяются: они разрешаются при загрузке.
func Validate(name string, items []storage.TemplateItem) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyTemplateName
	}
	if len(items) == 0 {
		return ErrNoItems
	}

	seen := make(map[string]int, len(items))
	for i, item := range items {
		if strings.TrimSpace(item.GenericName) == "" {
			return &ValidationError{Index: i, Err: ErrEmptyGenericName}
		}

		varName := strings.TrimSpace(item.VarName)
		if varName == "" {
			continue
		}

		key := strings.ToLower(varName)
		switch {
		case key == constants.StringVar:
			return &ValidationError{Index: i, VarName: varName, Err: ErrReservedVariableName}
		case !varNameRe.MatchString(varName):
			return &ValidationError{Index: i, VarName: varName, Err: ErrInvalidVariableName}
		}

		if _, dup := seen[key]; dup {
			return &ValidationError{Index: i, VarName: varName, Err: ErrDuplicateVariableName}
		}
		seen[key] = i
	}

	return nil
}

// IsValidation - ошибка относится к проверке шаблона, а не к хранилищу.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyTemplateName,
		ErrNoItems,
		ErrEmptyGenericName,
		ErrReservedVariableName,
		ErrInvalidVariableName,
		ErrDuplicateVariableName,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
