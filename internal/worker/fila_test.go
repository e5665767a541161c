package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// memFila is an in-memory Fila covering the lists and sorted sets the
// queue uses.
type memFila struct {
	listas    map[string][]string
	zsets     map[string]map[string]float64
	falhaPush error

	mu         sync.Mutex
	falhaBRPop error
	brpops     int
}

func newMemFila() *memFila {
	return &memFila{listas: map[string][]string{}, zsets: map[string]map[string]float64{}}
}

var _ FilaBloqueante = (*memFila)(nil)

// BRPop pops without blocking: an empty queue answers redis.Nil at once.
func (f *memFila) BRPop(ctx context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.brpops++
	if f.falhaBRPop != nil {
		cmd.SetErr(f.falhaBRPop)
		return cmd
	}
	for _, k := range keys {
		if l := f.listas[k]; len(l) > 0 {
			f.listas[k] = l[:len(l)-1]
			cmd.SetVal([]string{k, l[len(l)-1]})
			return cmd
		}
	}
	cmd.SetErr(redis.Nil)
	return cmd
}

func texto(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

func (f *memFila) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.falhaPush != nil {
		cmd.SetErr(f.falhaPush)
		return cmd
	}
	for _, v := range values {
		f.listas[key] = append([]string{texto(v)}, f.listas[key]...)
	}
	cmd.SetVal(int64(len(f.listas[key])))
	return cmd
}

func (f *memFila) LLen(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(f.listas[key])))
	return cmd
}

func (f *memFila) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	l := f.listas[key]
	if stop < 0 || stop >= int64(len(l)) {
		stop = int64(len(l)) - 1
	}
	if start > stop {
		cmd.SetVal([]string{})
		return cmd
	}
	cmd.SetVal(append([]string(nil), l[start:stop+1]...))
	return cmd
}

func (f *memFila) ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.zsets[key] == nil {
		f.zsets[key] = map[string]float64{}
	}
	for _, m := range members {
		f.zsets[key][texto(m.Member)] = m.Score
	}
	cmd.SetVal(int64(len(members)))
	return cmd
}

func (f *memFila) ZRangeByScore(ctx context.Context, key string, opt *redis.ZRangeBy) *redis.StringSliceCmd {
	cmd := redis.NewStringSliceCmd(ctx)
	max, err := strconv.ParseFloat(opt.Max, 64)
	if err != nil {
		cmd.SetErr(errors.New("max inválido"))
		return cmd
	}
	var out []string
	for m, s := range f.zsets[key] {
		if s <= max {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return f.zsets[key][out[i]] < f.zsets[key][out[j]] })
	if opt.Count > 0 && int64(len(out)) > opt.Count {
		out = out[:opt.Count]
	}
	cmd.SetVal(out)
	return cmd
}

func (f *memFila) ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, m := range members {
		if _, ok := f.zsets[key][texto(m)]; ok {
			delete(f.zsets[key], texto(m))
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}
