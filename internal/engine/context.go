package engine

import (
	"slices"
	"sync"
)

// RunContext — общее хранилище данных одного run.
//
// Заполняется вызывающей стороной до запуска и доступно каждому шагу
// на чтение и запись. Изоляции по шагам нет: записи упавшего шага
// видны последующим, отката нет.
//
// Одиночные операции атомарны, но при одновременной записи одного
// ключа шагами одной группы побеждает последняя запись — порядок
// движок не определяет. Шаги, которым нужен общий счётчик или
// согласованность нескольких ключей, должны договариваться сами.
type RunContext struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewRunContext создаёт контекст с начальными значениями.
// Переданный словарь копируется.
func NewRunContext(initial map[string]any) *RunContext {
	data := make(map[string]any, len(initial))
	for k, v := range initial {
		data[k] = v
	}
	return &RunContext{data: data}
}

// Get возвращает значение по ключу.
func (rc *RunContext) Get(key string) (any, bool) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	v, ok := rc.data[key]
	return v, ok
}

// GetString возвращает строковое значение по ключу.
// Отсутствующий ключ или значение другого типа — пустая строка.
func (rc *RunContext) GetString(key string) string {
	v, ok := rc.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Set записывает значение по ключу.
func (rc *RunContext) Set(key string, value any) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.data[key] = value
}

// Merge записывает все пары из values.
func (rc *RunContext) Merge(values map[string]any) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	for k, v := range values {
		rc.data[k] = v
	}
}

// Keys возвращает отсортированный список ключей.
func (rc *RunContext) Keys() []string {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	keys := make([]string, 0, len(rc.data))
	for k := range rc.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Snapshot возвращает поверхностную копию данных.
// Используется для рендеринга шаблонов и сериализации.
func (rc *RunContext) Snapshot() map[string]any {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	out := make(map[string]any, len(rc.data))
	for k, v := range rc.data {
		out[k] = v
	}
	return out
}
