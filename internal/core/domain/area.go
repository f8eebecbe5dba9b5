package domain

import (
	"fmt"
	"strings"
)

// SourceLine строка исходного списка вместе с её номером (с 1)
type SourceLine struct {
	No   int
	Text string
}

// Record разобранная строка: имя и 6-значный код
type Record struct {
	Line int
	Name string
	Code string
}

// AreaNode узел, создаваемый HierarchyBuilder. Только структура, без производных полей.
type AreaNode struct {
	ID       string
	Name     string
	Children []*AreaNode
}

func NewAreaNode(name, id string) *AreaNode {
	return &AreaNode{ID: id, Name: name}
}

// Level уровень узла по его коду; для некорректного кода 0
func (n *AreaNode) Level() Level {
	level, _ := ClassifyCode(n.ID)
	return level
}

// Area административная единица с производными полями предков.
// Children == nil означает настоящий лист.
type Area struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Children    []*Area `json:"children,omitempty"`
	ParentID    string  `json:"parentId,omitempty"`
	ParentIDs   string  `json:"parentIds"`
	ParentNames string  `json:"parentNames"`
	FullName    string  `json:"fullName"`
}

func (a *Area) Level() Level {
	level, _ := ClassifyCode(a.ID)
	return level
}

func (a *Area) IsLeaf() bool {
	return a.Children == nil
}

// String returns a string representation of the area
func (a *Area) String() string {
	return fmt.Sprintf("%s: %s (%s)", a.ID, a.FullName, a.Level())
}

// AreaSet результат аннотации: лес, плоский индекс и диагностика
type AreaSet struct {
	Areas       []*Area
	Index       map[string]*Area
	Diagnostics []Diagnostic
}

// Lookup ищет узел по id в плоском индексе
func (s *AreaSet) Lookup(id string) (*Area, bool) {
	a, ok := s.Index[id]
	return a, ok
}

// Walk обходит лес в прямом порядке; false из fn прекращает обход
func (s *AreaSet) Walk(fn func(a *Area) bool) {
	var walk func(areas []*Area) bool
	walk = func(areas []*Area) bool {
		for _, a := range areas {
			if !fn(a) {
				return false
			}
			if !walk(a.Children) {
				return false
			}
		}
		return true
	}
	walk(s.Areas)
}

// Count количество узлов в лесу (включая дубликаты id)
func (s *AreaSet) Count() int {
	n := 0
	s.Walk(func(*Area) bool {
		n++
		return true
	})
	return n
}

// Flatten возвращает узлы в прямом порядке, пропуская дубликаты id,
// не попавшие в индекс (авторитетна первая запись)
func (s *AreaSet) Flatten() []*Area {
	out := make([]*Area, 0, len(s.Index))
	s.Walk(func(a *Area) bool {
		if s.Index[a.ID] == a {
			out = append(out, a)
		}
		return true
	})
	return out
}

// AncestorIDs разбирает цепочку parentIds ("0,330000,") в срез
func (a *Area) AncestorIDs() []string {
	trimmed := strings.TrimSuffix(a.ParentIDs, ",")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, ",")
}
