package keyhash

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"sync"

	"github.com/goccy/go-reflect"

	rowcache "github.com/karupanerura/row-cache"
)

var (
	keyHashMapMutex sync.RWMutex

	// keyHashMap caches the hash function created for each key type.
	keyHashMap = map[string]func(any) int{}
)

// GetOrCreateKeyHash returns a hash function for the given key type.
// Hash functions are created once per type and reused afterwards.
func GetOrCreateKeyHash[K rowcache.KeyConstraint]() func(any) int {
	var zero K
	return getOrCreateKeyHashAny(zero)
}

func getOrCreateKeyHashAny(t any) func(any) int {
	name := reflect.TypeOf(t).String()

	keyHashMapMutex.RLock()
	f, ok := keyHashMap[name]
	keyHashMapMutex.RUnlock()
	if ok {
		return f
	}

	keyHashMapMutex.Lock()
	defer keyHashMapMutex.Unlock()
	if f, ok := keyHashMap[name]; ok {
		return f
	}

	f = createKeyHashAny(t)
	keyHashMap[name] = f
	return f
}

// createKeyHashAny creates an FNV-1a based hash function for the given type.
func createKeyHashAny(t any) func(any) int {
	switch t.(type) {
	case int:
		return func(v any) int { return hashUint64(uint64(v.(int))) }
	case int8:
		return func(v any) int { return hashUint64(uint64(v.(int8))) }
	case int16:
		return func(v any) int { return hashUint64(uint64(v.(int16))) }
	case int32:
		return func(v any) int { return hashUint64(uint64(v.(int32))) }
	case int64:
		return func(v any) int { return hashUint64(uint64(v.(int64))) }
	case uint:
		return func(v any) int { return hashUint64(uint64(v.(uint))) }
	case uint8:
		return func(v any) int { return hashUint64(uint64(v.(uint8))) }
	case uint16:
		return func(v any) int { return hashUint64(uint64(v.(uint16))) }
	case uint32:
		return func(v any) int { return hashUint64(uint64(v.(uint32))) }
	case uint64:
		return func(v any) int { return hashUint64(v.(uint64)) }
	case uintptr:
		panic("uintptr cannot be a hash key")
	case float32:
		return func(v any) int { return hashUint64(uint64(math.Float32bits(v.(float32)))) }
	case float64:
		return func(v any) int { return hashUint64(math.Float64bits(v.(float64))) }
	case string:
		return func(v any) int { return hashString(v.(string)) }
	default:
		panic(fmt.Sprintf("unknown key type: %T", t))
	}
}

func hashUint64(v uint64) int {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	h := fnv.New64a()
	_, _ = h.Write(b[:])
	return int(h.Sum64())
}

func hashString(s string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64())
}
