// Package vecmath 提供推荐核心用到的稠密向量运算：点积、余弦、L2 归一化、min-max 归一化。
package vecmath

import "math"

// Dot 计算两个向量的点积。长度不一致时按 0 处理（视为不可比）。
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm 计算向量的 L2 范数。
func Norm(a []float64) float64 {
	var ss float64
	for _, v := range a {
		ss += v * v
	}
	return math.Sqrt(ss)
}

// Normalize 返回 L2 归一化后的新向量；零向量保持为零向量。
func Normalize(a []float64) []float64 {
	out := make([]float64, len(a))
	n := Norm(a)
	if n == 0 {
		return out
	}
	for i, v := range a {
		out[i] = v / n
	}
	return out
}

// Cosine 计算余弦相似度；任一方为零向量时返回 0。
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// Concat 拼接两个向量，返回新切片。
func Concat(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// MinMax 对分数表做 min-max 归一化到 [0,1]，返回新 map：
// - 空表返回空 map
// - 所有分数相同时全部归一到 1.0（扁平列表视为一致最高，而不是被丢弃）
func MinMax(scores map[int64]float64) map[int64]float64 {
	out := make(map[int64]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range scores {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		for k := range scores {
			out[k] = 1.0
		}
		return out
	}
	for k, v := range scores {
		out[k] = (v - lo) / (hi - lo)
	}
	return out
}
