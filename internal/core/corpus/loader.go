package corpus

import (
	"os"

	"recipe-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// Loader 食譜語料庫載入器，依序嘗試候選路徑，全部失敗時回退到內建語料
type Loader struct {
	paths []string
}

// NewLoader 創建語料庫載入器
func NewLoader(paths []string) *Loader {
	return &Loader{paths: paths}
}

// Load 載入語料庫。找不到可解析的檔案時回傳內建預設語料，永不失敗
func (l *Loader) Load() []Recipe {
	for _, path := range l.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var recipes []Recipe
		if err := common.ParseJSONBytes(data, &recipes); err != nil {
			common.LogWarn("語料庫檔案解析失敗",
				zap.String("路徑", path),
				zap.Error(err),
			)
			continue
		}
		if len(recipes) == 0 {
			continue
		}

		common.LogInfo("語料庫載入完成",
			zap.String("路徑", path),
			zap.Int("食譜數量", len(recipes)),
		)
		return recipes
	}

	common.LogWarn("找不到語料庫檔案，使用內建預設語料",
		zap.Strings("候選路徑", l.paths),
	)
	return DefaultRecipes()
}

// DefaultRecipes 內建預設語料，保證系統永遠有資料可比對
func DefaultRecipes() []Recipe {
	return []Recipe{
		{
			Name:        "간장계란볶음밥",
			Ingredients: []string{"밥", "계란", "간장", "기름", "파"},
			Time:        15,
			Difficulty:  "초급",
			Steps: []string{
				"1. 팬에 기름을 두르고 계란을 스크램블로 만듭니다.",
				"2. 밥을 넣고 계란과 함께 볶습니다.",
				"3. 간장으로 간을 맞춰 완성합니다.",
			},
		},
		{
			Name:        "두부조림",
			Ingredients: []string{"두부", "간장", "설탕", "마늘", "대파"},
			Time:        20,
			Difficulty:  "초급",
			Steps: []string{
				"1. 두부를 적당한 크기로 썰어줍니다.",
				"2. 팬에 두부를 구워줍니다.",
				"3. 간장, 설탕, 마늘로 양념을 만듭니다.",
				"4. 양념을 넣고 조려줍니다.",
			},
		},
		{
			Name:        "삼겹살볶음",
			Ingredients: []string{"삼겹살", "양파", "마늘", "고추장", "참기름"},
			Time:        25,
			Difficulty:  "중급",
			Steps: []string{
				"1. 삼겹살을 먹기 좋은 크기로 썰어줍니다.",
				"2. 양파와 마늘을 썰어줍니다.",
				"3. 팬에 삼겹살을 볶습니다.",
				"4. 양파, 마늘을 넣고 볶습니다.",
				"5. 고추장과 참기름으로 간을 맞춥니다.",
			},
		},
	}
}
