package services

import (
	"fmt"

	"github.com/terratensor/cnareas/internal/core/domain"
)

// BuildStats счётчики одного прохода построителя
type BuildStats struct {
	Lines       int
	Provinces   int
	Prefectures int
	Counties    int
	Skipped     int
}

// BuildResult лес провинций и диагностика пропущенных строк
type BuildResult struct {
	Roots       []*domain.AreaNode
	Diagnostics []domain.Diagnostic
	Stats       BuildStats
}

// buildState аккумулятор свёртки по строкам источника
type buildState struct {
	roots       []*domain.AreaNode
	province    *domain.AreaNode // последняя созданная провинция
	prefecture  *domain.AreaNode // последний 地级 текущей провинции
	diagnostics []domain.Diagnostic
	stats       BuildStats
}

// HierarchyBuilder строит лес 省/地/县 за один проход по упорядоченным строкам
type HierarchyBuilder struct{}

func NewHierarchyBuilder() *HierarchyBuilder {
	return &HierarchyBuilder{}
}

// Build сворачивает строки в лес. Порядок детей совпадает с порядком строк.
// Ошибкой завершается только при коде неверной длины.
func (b *HierarchyBuilder) Build(lines []domain.SourceLine) (*BuildResult, error) {
	var state buildState

	for _, line := range lines {
		var err error
		state, err = b.step(state, line)
		if err != nil {
			return nil, err
		}
	}

	return &BuildResult{
		Roots:       state.roots,
		Diagnostics: state.diagnostics,
		Stats:       state.stats,
	}, nil
}

// step обрабатывает одну строку и возвращает новое состояние
func (b *HierarchyBuilder) step(s buildState, line domain.SourceLine) (buildState, error) {
	s.stats.Lines++

	rec, diag, err := ParseRecord(line)
	if err != nil {
		return s, err
	}
	if diag != nil {
		return s.skip(*diag), nil
	}

	level, err := domain.ClassifyCode(rec.Code)
	if err != nil {
		return s, &domain.CodeError{Line: rec.Line, Code: rec.Code}
	}

	switch level {
	case domain.LevelProvince:
		return s.addProvince(rec), nil
	case domain.LevelPrefecture:
		return s.addPrefecture(rec), nil
	default:
		return s.addCounty(rec), nil
	}
}

func (s buildState) skip(d domain.Diagnostic) buildState {
	s.diagnostics = append(s.diagnostics, d)
	s.stats.Skipped++
	return s
}

func (s buildState) orphan(rec domain.Record, format string, args ...any) buildState {
	return s.skip(domain.Diagnostic{
		Line:   rec.Line,
		Kind:   domain.KindOrphanRecord,
		Detail: fmt.Sprintf("%s %s: ", rec.Code, rec.Name) + fmt.Sprintf(format, args...),
	})
}

func (s buildState) addProvince(rec domain.Record) buildState {
	node := domain.NewAreaNode(rec.Name, rec.Code)
	s.roots = append(s.roots, node)
	s.province = node
	s.prefecture = nil
	s.stats.Provinces++
	return s
}

func (s buildState) addPrefecture(rec domain.Record) buildState {
	switch {
	case s.province == nil:
		return s.orphan(rec, "prefecture before any province")
	case domain.IsMunicipality(s.province.ID):
		// У городов центрального подчинения нет уровня 地级
		return s.orphan(rec, "municipality %s has no prefecture tier", s.province.ID)
	case !domain.SamePrefix(rec.Code, s.province.ID, 2):
		return s.orphan(rec, "prefix does not match province %s", s.province.ID)
	}

	node := domain.NewAreaNode(rec.Name, rec.Code)
	s.province.Children = append(s.province.Children, node)
	s.prefecture = node
	s.stats.Prefectures++
	return s
}

func (s buildState) addCounty(rec domain.Record) buildState {
	if s.province == nil {
		return s.orphan(rec, "county before any province")
	}

	node := domain.NewAreaNode(rec.Name, rec.Code)

	switch {
	case domain.IsMunicipality(s.province.ID):
		// Районы муниципалитета идут прямо под ним, включая коды вне "XX01"
		// (например 310052, демонстрационная зона дельты Янцзы у Шанхая)
		s.province.Children = append(s.province.Children, node)
	case s.prefecture == nil:
		return s.orphan(rec, "no prefecture in province %s", s.province.ID)
	case domain.SamePrefix(rec.Code, s.prefecture.ID, 4):
		s.prefecture.Children = append(s.prefecture.Children, node)
	default:
		// 省直辖县级行政单位: подчинён провинции напрямую
		s.province.Children = append(s.province.Children, node)
	}

	s.stats.Counties++
	return s
}
