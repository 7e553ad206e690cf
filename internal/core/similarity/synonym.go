package similarity

import (
	"os"

	"recipe-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// SynonymGroup 同義詞群組：一個代表詞與其同義詞列表
type SynonymGroup struct {
	Canonical string
	Synonyms  []string
}

// SynonymDict 韓語食材同義詞字典。啟動時載入一次，之後不再變動。
// 群組順序固定（表格的宣告順序），確保同義詞層的比對結果可重現。
type SynonymDict struct {
	groups []SynonymGroup
}

// NewSynonymDict 創建內建同義詞字典
func NewSynonymDict() *SynonymDict {
	return &SynonymDict{groups: koreanIngredientGroups()}
}

// LoadSynonymDict 從 JSON 檔案載入同義詞字典，失敗時回退到內建表
// 檔案格式：{"두부": ["두부", "순두부", ...], ...}
func LoadSynonymDict(path string) *SynonymDict {
	if path == "" {
		return NewSynonymDict()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return NewSynonymDict()
	}

	// 用有序解析保留檔案中的群組順序
	var raw map[string][]string
	if err := common.ParseJSONBytes(data, &raw); err != nil {
		common.LogWarn("同義詞字典解析失敗，使用內建表",
			zap.String("路徑", path),
			zap.Error(err),
		)
		return NewSynonymDict()
	}

	// map 迭代順序不定，以內建表順序為主，檔案僅覆蓋/追加
	dict := NewSynonymDict()
	for i := range dict.groups {
		if syns, ok := raw[dict.groups[i].Canonical]; ok {
			dict.groups[i].Synonyms = syns
			delete(raw, dict.groups[i].Canonical)
		}
	}
	for canonical, syns := range raw {
		dict.groups = append(dict.groups, SynonymGroup{Canonical: canonical, Synonyms: syns})
	}
	return dict
}

// Groups 依固定順序迭代所有群組
func (d *SynonymDict) Groups() []SynonymGroup {
	return d.groups
}

// CanonicalGroupOf 回傳包含 term 的第一個群組的同義詞集合。
// 比對為精確字串相等，不做任何正規化；找不到是正常結果。
func (d *SynonymDict) CanonicalGroupOf(term string) ([]string, bool) {
	for _, g := range d.groups {
		for _, syn := range g.Synonyms {
			if syn == term {
				return g.Synonyms, true
			}
		}
	}
	return nil, false
}

// koreanIngredientGroups 內建韓語食材同義詞表
func koreanIngredientGroups() []SynonymGroup {
	return []SynonymGroup{
		{"두부", []string{"두부", "순두부", "연두부", "부침두부", "모두부"}},
		{"돼지고기", []string{"돼지고기", "삼겹살", "목살", "항정살", "등심", "안심", "앞다리살"}},
		{"소고기", []string{"소고기", "등심", "안심", "갈비", "불고기용고기", "스테이크용고기"}},
		{"닭고기", []string{"닭고기", "닭가슴살", "닭다리살", "닭날개", "통닭"}},
		{"양파", []string{"양파", "대파", "쪽파", "실파", "양파즙"}},
		{"마늘", []string{"마늘", "다진마늘", "마늘즙", "깐마늘"}},
		{"고추", []string{"고추", "청양고추", "홍고추", "풋고추", "건고추"}},
		{"버섯", []string{"버섯", "느타리버섯", "팽이버섯", "새송이버섯", "표고버섯", "양송이버섯"}},
		{"감자", []string{"감자", "새감자", "자주감자", "수미감자"}},
		{"당근", []string{"당근", "mini당근", "베이비당근"}},
		{"배추", []string{"배추", "절임배추", "배추김치", "얼갈이배추"}},
		{"무", []string{"무", "열무", "총각무", "무즙"}},
		{"콩", []string{"콩", "완두콩", "검은콩", "백태", "서리태", "콩나물"}},
		{"계란", []string{"계란", "달걀", "메추리알", "계란흰자", "계란노른자"}},
		{"우유", []string{"우유", "저지방우유", "무지방우유", "연유", "생크림"}},
		{"치즈", []string{"치즈", "모짜렐라치즈", "체다치즈", "크림치즈", "파마산치즈"}},
		{"쌀", []string{"쌀", "현미", "찹쌀", "보리", "밥"}},
		{"면", []string{"면", "라면", "우동면", "소바면", "스파게티면", "국수"}},
		{"기름", []string{"기름", "올리브오일", "참기름", "들기름", "포도씨오일", "카놀라오일"}},
		{"간장", []string{"간장", "진간장", "국간장", "양조간장"}},
		{"된장", []string{"된장", "쌈장", "고추장", "춘장"}},
		{"식초", []string{"식초", "사과식초", "현미식초", "발사믹식초"}},
		{"설탕", []string{"설탕", "백설탕", "흑설탕", "올리고당", "꿀", "물엿"}},
		{"소금", []string{"소금", "굵은소금", "천일염", "맛소금"}},
		{"후추", []string{"후추", "흰후추", "검은후추", "후춧가루"}},
		{"토마토", []string{"토마토", "방울토마토", "대추방울토마토", "토마토페이스트"}},
		{"오이", []string{"오이", "미니오이", "피클"}},
		{"상추", []string{"상추", "깻잎", "시금치", "양상추", "로메인"}},
		{"생강", []string{"생강", "생강즙", "생강가루"}},
		{"레몬", []string{"레몬", "라임", "레몬즙", "라임즙"}},
		{"사과", []string{"사과", "사과즙", "건사과"}},
		{"바나나", []string{"바나나", "바나나칩"}},
		{"딸기", []string{"딸기", "냉동딸기", "딸기잼"}},
		{"고구마", []string{"고구마", "밤고구마", "호박고구마", "자색고구마"}},
		{"호박", []string{"호박", "애호박", "단호박", "늙은호박"}},
	}
}
