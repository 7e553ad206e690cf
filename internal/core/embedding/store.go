package embedding

import (
	"encoding/json"
	"os"
	"sync"
)

// Store 嵌入快取的持久化介面。
// Load 在啟動時整批載入；Save 以寫穿（write-through）方式保存完整快照。
type Store interface {
	Load() (map[string][]float64, error)
	Save(embeddings map[string][]float64) error
}

// FileStore JSON 檔案持久化：食材文字到向量的對應表
type FileStore struct {
	path string
}

// NewFileStore 創建檔案持久化
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load 整批載入快取檔案。檔案不存在視為空快取。
func (s *FileStore) Load() (map[string][]float64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]float64{}, nil
		}
		return nil, err
	}

	var embeddings map[string][]float64
	if err := json.Unmarshal(data, &embeddings); err != nil {
		return nil, err
	}
	if embeddings == nil {
		embeddings = map[string][]float64{}
	}
	return embeddings, nil
}

// Save 保存完整快照到檔案
func (s *FileStore) Save(embeddings map[string][]float64) error {
	data, err := json.Marshal(embeddings)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

// MemoryStore 記憶體持久化，供測試替換
type MemoryStore struct {
	mu         sync.Mutex
	embeddings map[string][]float64
	saveCount  int
}

// NewMemoryStore 創建記憶體持久化
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{embeddings: map[string][]float64{}}
}

// Load 回傳目前保存內容的副本
func (s *MemoryStore) Load() (map[string][]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]float64, len(s.embeddings))
	for k, v := range s.embeddings {
		out[k] = append([]float64(nil), v...)
	}
	return out, nil
}

// Save 覆寫保存內容
func (s *MemoryStore) Save(embeddings map[string][]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]float64, len(embeddings))
	for k, v := range embeddings {
		out[k] = append([]float64(nil), v...)
	}
	s.embeddings = out
	s.saveCount++
	return nil
}

// SaveCount 回傳 Save 被呼叫的次數
func (s *MemoryStore) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCount
}
