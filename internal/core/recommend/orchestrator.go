package recommend

import (
	"context"
	"strings"
	"time"

	"recipe-recommender/internal/core/corpus"
	"recipe-recommender/internal/core/remote"
	"recipe-recommender/internal/core/similarity"
	"recipe-recommender/internal/infrastructure/config"
	"recipe-recommender/internal/pkg/common"

	"go.uber.org/zap"
)

// 推薦結果最多回傳的食譜數
const topRecipes = 5

// Recognizer 食材識別服務
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, filename string) ([]string, error)
}

// Generator 食譜生成服務
type Generator interface {
	Generate(ctx context.Context, ingredients []string, maxTime, difficultyMax int) ([]remote.GeneratedRecipe, error)
}

// Orchestrator 推薦協調器：逐狀態驅動端到端流程，
// 任何上游失敗都轉移到本地回退，保證永遠給出答案。
type Orchestrator struct {
	recognizer  Recognizer
	generator   Generator
	engine      *similarity.Engine
	loader      *corpus.Loader
	recognition config.UpstreamConfig
	generation  config.UpstreamConfig
}

// NewOrchestrator 創建推薦協調器
func NewOrchestrator(recognizer Recognizer, generator Generator, engine *similarity.Engine, loader *corpus.Loader, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		recognizer:  recognizer,
		generator:   generator,
		engine:      engine,
		loader:      loader,
		recognition: cfg.Recognition,
		generation:  cfg.Generation,
	}
}

// RecognizeIngredients 調用識別服務（帶重試）取得圖片中的食材
func (o *Orchestrator) RecognizeIngredients(ctx context.Context, image []byte, filename string) ([]string, error) {
	var ingredients []string
	err := o.callWithRetry(ctx, "recognition", o.recognition, func() error {
		var callErr error
		ingredients, callErr = o.recognizer.Recognize(ctx, image, filename)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return ingredients, nil
}

// RecommendByImage 圖片進、推薦食譜出的完整流程。
// 識別失敗時直接回退到本地語料（無使用者食材，只做時間/難度過濾）。
func (o *Orchestrator) RecommendByImage(ctx context.Context, image []byte, filename string, req Request) (*Result, error) {
	path := []State{StateInit, StateCallRecognize}

	// 識別失敗與識別不出任何食材同樣處理：
	// 圖片流程的終極保證是永遠給出食譜，不得以空食材列表報錯
	ingredients, err := o.RecognizeIngredients(ctx, image, filename)
	if err != nil || len(ingredients) == 0 {
		common.LogWarn("識別無可用結果，回退到本地語料",
			zap.Int("食材數量", len(ingredients)),
			zap.Error(err),
		)
		result := o.localFallback(ctx, req)
		result.Path = append(path, result.Path...)
		return result, nil
	}

	req.Ingredients = ingredients
	result, err := o.Recommend(ctx, req)
	if err != nil {
		return nil, err
	}
	result.Path = append(path, result.Path...)
	return result, nil
}

// Recommend 食材列表進、推薦食譜出的完整流程。
// 唯一對外暴露的錯誤是空食材列表的驗證錯誤；上游失敗一律本地回退。
func (o *Orchestrator) Recommend(ctx context.Context, req Request) (*Result, error) {
	if len(req.Ingredients) == 0 {
		return nil, common.NewValidationError("재료 목록이 비어있습니다")
	}
	normalizeRequest(&req)

	path := []State{StateInit, StateCallGenerate}

	var generated []remote.GeneratedRecipe
	err := o.callWithRetry(ctx, "generation", o.generation, func() error {
		var callErr error
		generated, callErr = o.generator.Generate(ctx, req.Ingredients, req.MaxTime, req.DifficultyMax)
		return callErr
	})
	if err != nil || len(generated) == 0 {
		common.LogWarn("生成服務不可用，回退到本地匹配",
			zap.Error(err),
			zap.Strings("食材", req.Ingredients),
		)
		result := o.localFallback(ctx, req)
		result.Ingredients = req.Ingredients
		result.Path = append(path, result.Path...)
		return result, nil
	}

	path = append(path, StateMergeLocal)
	recipes := o.mergeWithCorpus(generated, req)

	common.LogInfo("推薦完成（生成服務）",
		zap.Int("食譜數量", len(recipes)),
		zap.Strings("食材", req.Ingredients),
	)

	return &Result{
		Recipes:     recipes,
		Ingredients: req.Ingredients,
		Fallback:    false,
		Path:        append(path, StateDone),
	}, nil
}

// RecommendLocal 純本地推薦（不經過生成服務），供相似度推薦端點使用
func (o *Orchestrator) RecommendLocal(ctx context.Context, req Request) (*Result, error) {
	if len(req.Ingredients) == 0 {
		return nil, common.NewValidationError("재료 목록이 비어있습니다")
	}
	return o.localFallback(ctx, req), nil
}

// callWithRetry 依重試策略調用上游：連線失敗與超時固定延遲後重試，
// 協議錯誤不重試、立即升級到回退
func (o *Orchestrator) callWithRetry(ctx context.Context, service string, cfg config.UpstreamConfig, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		start := time.Now()
		err := call()
		common.LogUpstreamCall(service, attempt, time.Since(start), err)
		if err == nil {
			return nil
		}
		lastErr = err

		ue, ok := common.AsUpstreamError(err)
		if !ok || !ue.Retryable() {
			return err
		}

		if attempt < cfg.MaxRetries {
			select {
			case <-time.After(cfg.RetryDelay):
			case <-ctx.Done():
				return common.NewUpstreamError(service, common.UpstreamTimeout, ctx.Err())
			}
		}
	}
	return lastErr
}

// mergeWithCorpus 用生成服務回傳的食譜名稱到本地語料查詳細資訊。
// 名稱比對為大小寫不敏感的精確相等；查不到就以佔位字串補齊，不讓請求失敗。
func (o *Orchestrator) mergeWithCorpus(generated []remote.GeneratedRecipe, req Request) []RecommendedRecipe {
	local := o.loader.Load()

	recipes := make([]RecommendedRecipe, 0, len(generated))
	for _, g := range generated {
		name := g.DisplayName()
		if name == "" {
			continue
		}

		rec := RecommendedRecipe{
			Name:             name,
			Summary:          g.Summary,
			Time:             g.CookTime(),
			Difficulty:       g.Difficulty,
			Ingredients:      []string{placeholderIngredient},
			Steps:            []string{placeholderStep},
			TotalIngredients: len(req.Ingredients),
		}

		for _, lr := range local {
			if strings.EqualFold(lr.Name, name) {
				rec.Ingredients = lr.Ingredients
				rec.Steps = lr.Steps
				if rec.Time == 0 {
					rec.Time = lr.Time
				}
				if rec.Difficulty == 0 {
					rec.Difficulty = lr.DifficultyLevel()
				}
				break
			}
		}

		recipes = append(recipes, rec)
	}
	return recipes
}

// localFallback 純本地推薦：語料庫 + 相似度引擎。終極可用性保證，永不失敗。
func (o *Orchestrator) localFallback(ctx context.Context, req Request) *Result {
	normalizeRequest(&req)
	path := []State{StateLocalFallback}

	all := o.loader.Load()

	// 時間/難度過濾
	filtered := make([]corpus.Recipe, 0, len(all))
	for _, r := range all {
		if r.Time <= req.MaxTime && r.DifficultyLevel() <= req.DifficultyMax {
			filtered = append(filtered, r)
		}
	}

	// 無使用者食材（識別失敗的回退）：直接回傳過濾後的前幾筆
	if len(req.Ingredients) == 0 {
		if len(filtered) > topRecipes {
			filtered = filtered[:topRecipes]
		}
		recipes := make([]RecommendedRecipe, 0, len(filtered))
		for _, r := range filtered {
			recipes = append(recipes, RecommendedRecipe{
				Name:        r.Name,
				Time:        r.Time,
				Difficulty:  r.DifficultyLevel(),
				Ingredients: r.Ingredients,
				Steps:       r.Steps,
			})
		}
		return &Result{Recipes: recipes, Fallback: true, Path: append(path, StateDone)}
	}

	var scored []similarity.ScoredRecipe
	if req.UseSimilarity {
		engine := o.engine
		if req.Threshold > 0 {
			engine = engine.WithThreshold(req.Threshold)
		}
		scored = engine.EnhancedRecipeMatching(ctx, req.Ingredients, filtered)

		// 只保留有匹配的食譜
		matched := scored[:0]
		for _, s := range scored {
			if s.SimilarityScore > 0 {
				matched = append(matched, s)
			}
		}
		scored = matched
	} else {
		scored = similarity.BasicRecipeMatching(req.Ingredients, filtered)
	}

	if len(scored) > topRecipes {
		scored = scored[:topRecipes]
	}

	recipes := make([]RecommendedRecipe, 0, len(scored))
	for _, s := range scored {
		recipes = append(recipes, RecommendedRecipe{
			Name:             s.Name,
			Summary:          s.Name + " - 맛있는 요리",
			Time:             s.Time,
			Difficulty:       s.DifficultyLevel(),
			Ingredients:      s.Ingredients,
			Steps:            s.Steps,
			SimilarityScore:  s.SimilarityScore,
			MatchRate:        s.MatchRate,
			MatchedCount:     s.MatchedCount,
			TotalIngredients: s.TotalIngredients,
			Matches:          s.Matches,
		})
	}

	common.LogInfo("推薦完成（本地回退）",
		zap.Int("食譜數量", len(recipes)),
		zap.Strings("食材", req.Ingredients),
	)

	return &Result{
		Recipes:     recipes,
		Ingredients: req.Ingredients,
		Fallback:    true,
		Path:        append(path, StateDone),
	}
}

// normalizeRequest 補齊請求預設值
func normalizeRequest(req *Request) {
	if req.MaxTime <= 0 {
		req.MaxTime = 60
	}
	if req.DifficultyMax <= 0 {
		req.DifficultyMax = 3
	}
}
