package recommend

import (
	"recipe-recommender/internal/core/similarity"
)

// State 推薦流程狀態
type State string

const (
	StateInit          State = "INIT"
	StateCallRecognize State = "CALL_RECOGNIZE"
	StateCallGenerate  State = "CALL_GENERATE"
	StateMergeLocal    State = "MERGE_LOCAL"
	StateLocalFallback State = "LOCAL_FALLBACK"
	StateDone          State = "DONE"
)

// 語料庫查不到生成食譜細節時的佔位字串
const (
	placeholderIngredient = "재료 정보 준비 중"
	placeholderStep       = "조리 방법 준비 중"
)

// Request 推薦請求
type Request struct {
	Ingredients   []string `json:"ingredients"`
	MaxTime       int      `json:"max_time"`
	DifficultyMax int      `json:"difficulty_max"`
	UseSimilarity bool     `json:"use_similarity"`
	Threshold     float64  `json:"similarity_threshold"` // 0 表示沿用引擎預設門檻
}

// RecommendedRecipe 推薦結果中的單一食譜
type RecommendedRecipe struct {
	Name             string                        `json:"name"`
	Summary          string                        `json:"summary,omitempty"`
	Time             int                           `json:"time"`
	Difficulty       int                           `json:"difficulty"`
	Ingredients      []string                      `json:"ingredients"`
	Steps            []string                      `json:"steps"`
	SimilarityScore  float64                       `json:"similarity_score"`
	MatchRate        float64                       `json:"match_rate"`
	MatchedCount     int                           `json:"matched_ingredients_count"`
	TotalIngredients int                           `json:"total_user_ingredients"`
	Matches          map[string][]similarity.Match `json:"ingredient_matches,omitempty"`
}

// Result 推薦結果。Path 記錄狀態機實際走過的狀態，供診斷與測試。
type Result struct {
	Recipes     []RecommendedRecipe `json:"recipes"`
	Ingredients []string            `json:"ingredients"`
	Fallback    bool                `json:"fallback"`
	Path        []State             `json:"-"`
}
