package similarity

import (
	"context"
	"sort"
	"strings"

	"recipe-recommender/internal/core/corpus"
)

// Tier 匹配層級
type Tier string

const (
	// TierExact 大小寫不敏感的雙向子字串匹配，分數固定 1.0
	TierExact Tier = "exact"
	// TierSynonym 同義詞字典匹配，分數固定 0.95
	TierSynonym Tier = "synonym"
	// TierEmbedding 嵌入餘弦相似度匹配，分數為 [threshold, 1] 的餘弦值
	TierEmbedding Tier = "embedding"
	// TierBasic 基礎字串匹配（停用嵌入路徑時的回退比對）
	TierBasic Tier = "basic"
)

const (
	exactScore   = 1.0
	synonymScore = 0.95
)

// Match 單一使用者食材對單一食譜食材的匹配結果
type Match struct {
	RecipeIngredient string  `json:"recipe_ingredient"`
	Score            float64 `json:"similarity_score"`
	Tier             Tier    `json:"match_type"`
}

// ScoredRecipe 附帶相似度資訊的食譜
type ScoredRecipe struct {
	corpus.Recipe
	SimilarityScore  float64            `json:"similarity_score"`
	MatchRate        float64            `json:"match_rate"`
	MatchedCount     int                `json:"matched_ingredients_count"`
	TotalIngredients int                `json:"total_user_ingredients"`
	Matches          map[string][]Match `json:"ingredient_matches"`
}

// Embedder 提供食材文字的嵌入向量。失敗時回傳零向量，不回傳錯誤。
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) []float64
}

// Engine 三層相似度引擎。配置不可變；需要不同門檻時以 WithThreshold 取得副本。
type Engine struct {
	dict      *SynonymDict
	embedder  Embedder
	threshold float64
	topK      int
	useEmbed  bool
}

// NewEngine 創建相似度引擎
func NewEngine(dict *SynonymDict, embedder Embedder, threshold float64, topK int, useEmbed bool) *Engine {
	return &Engine{
		dict:      dict,
		embedder:  embedder,
		threshold: threshold,
		topK:      topK,
		useEmbed:  useEmbed && embedder != nil,
	}
}

// Threshold 目前的相似度門檻
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// WithThreshold 回傳使用指定門檻的引擎副本，原引擎不變
func (e *Engine) WithThreshold(threshold float64) *Engine {
	clone := *e
	clone.threshold = threshold
	return &clone
}

// WithoutEmbedding 回傳停用嵌入層的引擎副本
func (e *Engine) WithoutEmbedding() *Engine {
	clone := *e
	clone.useEmbed = false
	return &clone
}

// MatchIngredient 依固定層級順序比對單一使用者食材與食譜食材列表。
//
// 層級 1 與層級 2 各自獨立走完整個列表，同一個食譜食材可能同時產生
// exact 與 synonym 兩筆結果（多重證據計分，沿用既有行為，勿去重）。
// 層級 3 只在前兩層完全沒有結果時才嘗試。
func (e *Engine) MatchIngredient(ctx context.Context, userIngredient string, recipeIngredients []string) []Match {
	var matches []Match

	// 層級 1：大小寫不敏感的雙向子字串匹配
	userLower := strings.ToLower(userIngredient)
	for _, recipeIng := range recipeIngredients {
		recipeLower := strings.ToLower(recipeIng)
		if strings.Contains(recipeLower, userLower) || strings.Contains(userLower, recipeLower) {
			matches = append(matches, Match{
				RecipeIngredient: recipeIng,
				Score:            exactScore,
				Tier:             TierExact,
			})
		}
	}

	// 層級 2：同義詞字典匹配。與層級 1 獨立評估；
	// 同一使用者食材可能屬於多個群組（如 등심），逐群組處理
	for _, group := range e.dict.Groups() {
		if !containsString(group.Synonyms, userIngredient) {
			continue
		}
		for _, recipeIng := range recipeIngredients {
			if containsAnySubstring(recipeIng, group.Synonyms) {
				matches = append(matches, Match{
					RecipeIngredient: recipeIng,
					Score:            synonymScore,
					Tier:             TierSynonym,
				})
			}
		}
	}

	// 層級 3：嵌入相似度，僅在前兩層零結果時嘗試
	if len(matches) == 0 && e.useEmbed {
		matches = e.matchByEmbedding(ctx, userIngredient, recipeIngredients)
	}

	return matches
}

// matchByEmbedding 以餘弦相似度比對，保留門檻以上的前 topK 筆
func (e *Engine) matchByEmbedding(ctx context.Context, userIngredient string, recipeIngredients []string) []Match {
	target := e.embedder.GetEmbedding(ctx, userIngredient)

	var matches []Match
	for _, recipeIng := range recipeIngredients {
		if recipeIng == userIngredient {
			continue
		}
		vec := e.embedder.GetEmbedding(ctx, recipeIng)
		score := CosineSimilarity(target, vec)
		if score >= e.threshold {
			matches = append(matches, Match{
				RecipeIngredient: recipeIng,
				Score:            score,
				Tier:             TierEmbedding,
			})
		}
	}

	// 依分數降冪，平手保留原列表順序
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > e.topK {
		matches = matches[:e.topK]
	}
	return matches
}

// EnhancedRecipeMatching 對每個食譜執行三層匹配並聚合分數。
//
// similarity_score = 各已匹配食材最佳分數之和 / 使用者食材總數
// （除以總數而非匹配數：未匹配的食材貢獻 0 分）。
// 結果依 similarity_score 降冪排序，平手保留語料庫順序。
// 零匹配的食譜仍保留在結果中（分數為 0），由呼叫端決定是否過濾。
func (e *Engine) EnhancedRecipeMatching(ctx context.Context, userIngredients []string, recipes []corpus.Recipe) []ScoredRecipe {
	scored := make([]ScoredRecipe, 0, len(recipes))

	for _, recipe := range recipes {
		matchesMap := make(map[string][]Match)
		totalScore := 0.0
		matchedCount := 0

		for _, userIng := range userIngredients {
			ms := e.MatchIngredient(ctx, userIng, recipe.Ingredients)
			if len(ms) == 0 {
				continue
			}
			matchesMap[userIng] = ms

			best := ms[0].Score
			for _, m := range ms[1:] {
				if m.Score > best {
					best = m.Score
				}
			}
			totalScore += best
			matchedCount++
		}

		var avgScore, matchRate float64
		if len(userIngredients) > 0 {
			avgScore = totalScore / float64(len(userIngredients))
			matchRate = float64(matchedCount) / float64(len(userIngredients))
		}

		scored = append(scored, ScoredRecipe{
			Recipe:           recipe,
			SimilarityScore:  avgScore,
			MatchRate:        matchRate,
			MatchedCount:     matchedCount,
			TotalIngredients: len(userIngredients),
			Matches:          matchesMap,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SimilarityScore > scored[j].SimilarityScore
	})
	return scored
}

// BasicRecipeMatching 基礎字串匹配回退：純雙向子字串比對，
// 只保留至少有一個匹配的食譜
func BasicRecipeMatching(userIngredients []string, recipes []corpus.Recipe) []ScoredRecipe {
	var scored []ScoredRecipe

	for _, recipe := range recipes {
		matchesMap := make(map[string][]Match)
		matched := 0

		for _, userIng := range userIngredients {
			userLower := strings.ToLower(userIng)
			for _, recipeIng := range recipe.Ingredients {
				recipeLower := strings.ToLower(recipeIng)
				if strings.Contains(recipeLower, userLower) || strings.Contains(userLower, recipeLower) {
					matched++
					matchesMap[userIng] = []Match{{
						RecipeIngredient: userIng,
						Score:            exactScore,
						Tier:             TierBasic,
					}}
					break
				}
			}
		}

		if matched == 0 {
			continue
		}

		score := float64(matched) / float64(len(userIngredients))
		scored = append(scored, ScoredRecipe{
			Recipe:           recipe,
			SimilarityScore:  score,
			MatchRate:        score,
			MatchedCount:     matched,
			TotalIngredients: len(userIngredients),
			Matches:          matchesMap,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SimilarityScore > scored[j].SimilarityScore
	})
	return scored
}

// containsString 精確字串相等的成員檢查
func containsString(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}

// containsAnySubstring 檢查 s 是否包含 list 中任一字串（大小寫敏感）
func containsAnySubstring(s string, list []string) bool {
	for _, sub := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
