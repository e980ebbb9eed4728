package cf

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Model 是隐式反馈矩阵分解产出的隐向量模型。
// 预测分数 = 用户隐向量 · 帖子隐向量。
type Model struct {
	UserFactors *mat.Dense // 用户数 × 因子数
	PostFactors *mat.Dense // 帖子数 × 因子数
	Factors     int
}

// Score 计算 (用户行, 帖子列) 的预测分数。
func (m *Model) Score(userRow, postCol int) float64 {
	return mat.Dot(
		m.UserFactors.RowView(userRow),
		m.PostFactors.RowView(postCol),
	)
}

// TrainALS 在交互矩阵上运行隐式反馈 ALS（Hu/Koren/Volinsky）。
//
// 矩阵值作为置信度增量：c_ui = 1 + w_ui，偏好 p_ui 在观测格取 1。
// 每轮交替固定一侧求解另一侧的正规方程：
//
//	x_u = (YᵀY + Yᵀ(Cᵘ−I)Y + λI)⁻¹ Yᵀ Cᵘ p(u)
//
// YᵀY 每轮只算一次；观测格少时每用户的增量修正是稀疏的。
// 隐向量用固定种子初始化，保证同一矩阵训练结果可复现。
func TrainALS(m *Matrix, factors int, reg float64, iterations int, seed int64) *Model {
	if m.Empty() || factors <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	userFactors := randomFactors(m.NumUsers(), factors, rng)
	postFactors := randomFactors(m.NumPosts(), factors, rng)

	cols := m.transpose()
	for it := 0; it < iterations; it++ {
		leastSquares(m.Rows, userFactors, postFactors, reg)
		leastSquares(cols, postFactors, userFactors, reg)
	}

	return &Model{
		UserFactors: userFactors,
		PostFactors: postFactors,
		Factors:     factors,
	}
}

// leastSquares 固定 fixed 侧，求解 target 侧的每一行。
// data[i] 是 target 第 i 行对 fixed 各行的加权观测。
func leastSquares(data []map[int]float64, target, fixed *mat.Dense, reg float64) {
	_, f := target.Dims()

	// YᵀY + λI：所有行共享的基底
	var base mat.SymDense
	base.SymOuterK(1, fixed.T())
	for d := 0; d < f; d++ {
		base.SetSym(d, d, base.At(d, d)+reg)
	}

	b := make([]float64, f)
	for u, row := range data {
		a := mat.NewSymDense(f, nil)
		a.CopySym(&base)
		for d := range b {
			b[d] = 0
		}

		for i, w := range row {
			y := fixed.RawRowView(i)
			c := 1 + w
			// A += (c−1)·y yᵀ；b += c·y（p_ui = 1）
			for j := 0; j < f; j++ {
				for k := j; k < f; k++ {
					a.SetSym(j, k, a.At(j, k)+(c-1)*y[j]*y[k])
				}
				b[j] += c * y[j]
			}
		}

		x := solvePSD(a, b)
		target.SetRow(u, x)
	}
}

// solvePSD 求解对称正定方程组 A x = b。正则项 λ>0 保证可分解；
// 数值上仍失败时退化为通用求解。
func solvePSD(a *mat.SymDense, b []float64) []float64 {
	n := len(b)
	bVec := mat.NewVecDense(n, b)
	var x mat.VecDense

	var chol mat.Cholesky
	if chol.Factorize(a) {
		if err := chol.SolveVecTo(&x, bVec); err == nil {
			return vecData(&x, n)
		}
	}
	var dense mat.VecDense
	if err := dense.SolveVec(a, bVec); err == nil {
		return vecData(&dense, n)
	}
	return make([]float64, n)
}

func vecData(v *mat.VecDense, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = v.AtVec(i)
	}
	return out
}

func randomFactors(rows, cols int, rng *rand.Rand) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = 0.01 * rng.NormFloat64()
	}
	return mat.NewDense(rows, cols, data)
}
