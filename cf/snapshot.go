package cf

import (
	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/postrec/core"
)

// snapshotData 是缓存成套产物的序列化形态（msgpack）。
// 矩阵与两侧因子一起落盘，恢复后的缓存与训练时刻完全一致。
type snapshotData struct {
	Users   []int64           `msgpack:"users"`
	Posts   []int64           `msgpack:"posts"`
	Rows    []map[int]float64 `msgpack:"rows"`
	Factors int               `msgpack:"factors"`
	UserFac []float64         `msgpack:"user_factors"` // 行优先
	PostFac []float64         `msgpack:"post_factors"` // 行优先
}

// Dump 把当前缓存序列化为快照；缓存为空时返回 (nil, nil)。
// 用途：进程下线前落盘，下次启动 Restore 暖启动，省掉首次惰性训练。
func (c *ModelCache) Dump() ([]byte, error) {
	c.mu.RLock()
	cur := c.cur
	c.mu.RUnlock()
	if cur == nil {
		return nil, nil
	}

	data := snapshotData{
		Users:   cur.matrix.Users,
		Posts:   cur.matrix.Posts,
		Rows:    cur.matrix.Rows,
		Factors: cur.model.Factors,
		UserFac: mat.DenseCopyOf(cur.model.UserFactors).RawMatrix().Data,
		PostFac: mat.DenseCopyOf(cur.model.PostFactors).RawMatrix().Data,
	}
	return msgpack.Marshal(&data)
}

// Restore 从快照恢复缓存，整组原子换入。快照损坏时缓存保持原状。
func (c *ModelCache) Restore(raw []byte) error {
	var data snapshotData
	if err := msgpack.Unmarshal(raw, &data); err != nil {
		return core.NewDomainError(core.ModuleCF, core.ErrorCodeInvalidInput,
			"cf: malformed snapshot: "+err.Error())
	}
	if data.Factors <= 0 || len(data.Users) == 0 || len(data.Posts) == 0 ||
		len(data.UserFac) != len(data.Users)*data.Factors ||
		len(data.PostFac) != len(data.Posts)*data.Factors ||
		len(data.Rows) != len(data.Users) {
		return core.NewDomainError(core.ModuleCF, core.ErrorCodeInvalidInput,
			"cf: snapshot dimensions do not agree")
	}

	matrix := &Matrix{
		Rows:      data.Rows,
		Users:     data.Users,
		Posts:     data.Posts,
		UserIndex: make(map[int64]int, len(data.Users)),
		PostIndex: make(map[int64]int, len(data.Posts)),
	}
	for i, u := range data.Users {
		matrix.UserIndex[u] = i
	}
	for j, p := range data.Posts {
		matrix.PostIndex[p] = j
	}
	model := &Model{
		UserFactors: mat.NewDense(len(data.Users), data.Factors, data.UserFac),
		PostFactors: mat.NewDense(len(data.Posts), data.Factors, data.PostFac),
		Factors:     data.Factors,
	}

	c.mu.Lock()
	c.cur = &cached{matrix: matrix, model: model}
	c.mu.Unlock()
	return nil
}
