package domain

import (
	"errors"
	"fmt"
)

// CodeLength длина кода административной единицы (GB/T 2260)
const CodeLength = 6

// RootID идентификатор синтетического корня, с которого начинаются цепочки parentIds
const RootID = "0"

var (
	// ErrMalformedCode код не состоит ровно из 6 цифр, классификация невозможна
	ErrMalformedCode = errors.New("malformed area code")

	// ErrDiagnostics импорт завершился, но были зафиксированы диагностики
	ErrDiagnostics = errors.New("import finished with diagnostics")
)

// Level уровень административного деления
type Level int

const (
	LevelProvince   Level = 1 // 省级: провинция, автономный район, город центрального подчинения
	LevelPrefecture Level = 2 // 地级
	LevelCounty     Level = 3 // 县级
)

func (l Level) String() string {
	switch l {
	case LevelProvince:
		return "province"
	case LevelPrefecture:
		return "prefecture"
	case LevelCounty:
		return "county"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// municipalityPrefixes четыре города центрального подчинения без уровня 地级:
// Пекин, Тяньцзинь, Шанхай, Чунцин
var municipalityPrefixes = map[string]struct{}{
	"11": {},
	"12": {},
	"31": {},
	"50": {},
}

// CodeError сообщает о некорректном коде в конкретной строке источника
type CodeError struct {
	Line int
	Code string
}

func (e *CodeError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, ErrMalformedCode, e.Code)
}

func (e *CodeError) Unwrap() error {
	return ErrMalformedCode
}

// ClassifyCode определяет уровень по хвостовым нулям кода.
// Порядок проверок важен: "0000" проверяется раньше "00".
func ClassifyCode(code string) (Level, error) {
	if len(code) != CodeLength || !IsDigits(code) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedCode, code)
	}

	switch {
	case code[2:] == "0000":
		return LevelProvince, nil
	case code[4:] == "00":
		return LevelPrefecture, nil
	default:
		return LevelCounty, nil
	}
}

// IsMunicipality проверяет, относится ли код провинции к городу центрального подчинения
func IsMunicipality(id string) bool {
	if len(id) < 2 {
		return false
	}
	_, ok := municipalityPrefixes[id[:2]]
	return ok
}

// IsDigits true для непустой строки только из ASCII цифр
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// SamePrefix сравнивает первые n символов двух кодов
func SamePrefix(a, b string, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	return a[:n] == b[:n]
}
