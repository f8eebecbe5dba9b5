package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terratensor/cnareas/internal/core/domain"
)

func sourceLines(texts ...string) []domain.SourceLine {
	lines := make([]domain.SourceLine, len(texts))
	for i, text := range texts {
		lines[i] = domain.SourceLine{No: i + 1, Text: text}
	}
	return lines
}

// sampleLines фрагмент реального списка с особыми случаями
var sampleLines = []string{
	"北京市 110000",
	"东城区 110101",
	"西城区 110102",
	"上海市 310000",
	"黄浦区 310101",
	"长三角生态绿色一体化发展示范区 310052",
	"浙江省 330000",
	"杭州市 330100",
	"上城区 330102",
	"拱墅区 330105",
	"宁波市 330200",
	"海曙区 330203",
	"湖北省 420000",
	"武汉市 420100",
	"江岸区 420102",
	"仙桃市 429004",
	"429005 潜江市",
}

func childIDs(n *domain.AreaNode) []string {
	ids := make([]string, len(n.Children))
	for i, c := range n.Children {
		ids[i] = c.ID
	}
	return ids
}

func mustBuild(t *testing.T, texts ...string) *BuildResult {
	t.Helper()
	result, err := NewHierarchyBuilder().Build(sourceLines(texts...))
	require.NoError(t, err)
	return result
}

func TestBuild_MunicipalityWithoutPrefecture(t *testing.T) {
	result := mustBuild(t, "北京市 110000", "东城区 110101")

	require.Len(t, result.Roots, 1)
	bj := result.Roots[0]
	assert.Equal(t, "110000", bj.ID)
	require.Len(t, bj.Children, 1)
	assert.Equal(t, "110101", bj.Children[0].ID)
	assert.Empty(t, bj.Children[0].Children)
	assert.Empty(t, result.Diagnostics)
}

func TestBuild_ThreeLevelChain(t *testing.T) {
	result := mustBuild(t, "浙江省 330000", "杭州市 330100", "上城区 330102")

	require.Len(t, result.Roots, 1)
	zj := result.Roots[0]
	assert.Equal(t, []string{"330100"}, childIDs(zj))
	assert.Equal(t, []string{"330102"}, childIDs(zj.Children[0]))
}

func TestBuild_ShanghaiDemonstrationZone(t *testing.T) {
	result := mustBuild(t, "上海市 310000", "黄浦区 310101", "长三角生态绿色一体化发展示范区 310052")

	require.Len(t, result.Roots, 1)
	assert.Equal(t, []string{"310101", "310052"}, childIDs(result.Roots[0]))
	assert.Empty(t, result.Diagnostics)
}

func TestBuild_MunicipalityAnyCountyAttachesDirectly(t *testing.T) {
	// Коды вне "5001xx" тоже остаются детьми муниципалитета
	result := mustBuild(t, "重庆市 500000", "万州区 500101", "城口县 500229")

	assert.Equal(t, []string{"500101", "500229"}, childIDs(result.Roots[0]))
	assert.Equal(t, 2, result.Stats.Counties)
}

func TestBuild_SwappedTokensEquivalent(t *testing.T) {
	nameFirst := mustBuild(t, "浙江省 330000", "杭州市 330100", "上城区 330102")
	codeFirst := mustBuild(t, "330000 浙江省", "330100 杭州市", "330102 上城区")

	assert.Equal(t, nameFirst.Roots, codeFirst.Roots)
}

func TestBuild_ProvinceAdministeredCounty(t *testing.T) {
	result := mustBuild(t, "湖北省 420000", "武汉市 420100", "江岸区 420102", "仙桃市 429004")

	hb := result.Roots[0]
	assert.Equal(t, []string{"420100", "429004"}, childIDs(hb))
	assert.Equal(t, []string{"420102"}, childIDs(hb.Children[0]))
}

func TestBuild_OrphanRecords(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		line  int
	}{
		{"prefecture before province", []string{"杭州市 330100"}, 1},
		{"county before province", []string{"上城区 330102"}, 1},
		{"prefecture in municipality", []string{"北京市 110000", "市辖区 110100"}, 2},
		{"prefecture prefix mismatch", []string{"浙江省 330000", "合肥市 340100"}, 2},
		{"county without prefecture", []string{"浙江省 330000", "上城区 330102"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustBuild(t, tt.lines...)

			require.Len(t, result.Diagnostics, 1)
			d := result.Diagnostics[0]
			assert.Equal(t, domain.KindOrphanRecord, d.Kind)
			assert.Equal(t, tt.line, d.Line)
			assert.Equal(t, 1, result.Stats.Skipped)
		})
	}
}

func TestBuild_NewProvinceResetsPrefecture(t *testing.T) {
	result := mustBuild(t, "浙江省 330000", "杭州市 330100", "安徽省 340000", "上城区 330102")

	require.Len(t, result.Roots, 2)
	assert.Empty(t, result.Roots[1].Children)
	assert.Empty(t, result.Roots[0].Children[0].Children)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, 4, result.Diagnostics[0].Line)
}

func TestBuild_MalformedLinesAreSkipped(t *testing.T) {
	result := mustBuild(t, "北京市 110000", "东城区", "110101 110102", "西城区 110102")

	assert.Equal(t, []string{"110102"}, childIDs(result.Roots[0]))
	require.Len(t, result.Diagnostics, 2)
	assert.Equal(t, domain.KindMalformedLine, result.Diagnostics[0].Kind)
	assert.Equal(t, 2, result.Diagnostics[0].Line)
	assert.Equal(t, 3, result.Diagnostics[1].Line)
}

func TestBuild_MalformedCodeAborts(t *testing.T) {
	_, err := NewHierarchyBuilder().Build(sourceLines("北京市 110000", "东城区 11010"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedCode))

	var codeErr *domain.CodeError
	require.True(t, errors.As(err, &codeErr))
	assert.Equal(t, 2, codeErr.Line)
	assert.Equal(t, "11010", codeErr.Code)
}

func TestBuild_Stats(t *testing.T) {
	result := mustBuild(t, sampleLines...)

	assert.Equal(t, BuildStats{
		Lines:       len(sampleLines),
		Provinces:   4,
		Prefectures: 3,
		Counties:    10,
		Skipped:     0,
	}, result.Stats)
	assert.Len(t, result.Roots, 4)
}

func TestBuild_Invariants(t *testing.T) {
	result := mustBuild(t, sampleLines...)

	for _, root := range result.Roots {
		assert.Equal(t, domain.LevelProvince, root.Level(), root.ID)

		var check func(n *domain.AreaNode)
		check = func(n *domain.AreaNode) {
			for _, c := range n.Children {
				if domain.IsMunicipality(root.ID) {
					assert.NotEqual(t, domain.LevelPrefecture, c.Level(), "municipality %s has prefecture %s", root.ID, c.ID)
				}
				check(c)
			}
		}
		check(root)
	}
}
