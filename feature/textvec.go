package feature

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/rushteam/postrec/pkg/vecmath"
)

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]+>`)
	tokenPattern   = regexp.MustCompile(`[\pL\pN_]{2,}`)
)

// StripHTML 以空格替换 HTML 标签。正文向量化前的唯一预处理。
func StripHTML(s string) string {
	return htmlTagPattern.ReplaceAllString(s, " ")
}

// TextVectorizer 是有界词表的 TF-IDF 向量化器。
//
// 核心约束：Fit 出来的词表定义了一个向量空间，同一空间内的向量才可比。
// 因此用户画像和全目录打分必须复用同一个 Fit 过的实例 ——
// 画像构建方会把自己 Fit 的实例随画像一起返回，打分方原样使用。
//
// 语义与常见实现对齐：
//   - 词表上限 maxVocab，按语料总词频截断（并列按字典序）
//   - 词表内索引按字典序分配，保证确定性
//   - idf = ln((1+n)/(1+df)) + 1（平滑），tf 取原始词频
//   - 每个文档向量做 L2 归一化；词表外的词贡献为零
type TextVectorizer struct {
	maxVocab int
	vocab    map[string]int
	idf      []float64
}

// NewTextVectorizer 创建未拟合的向量化器。maxVocab <= 0 表示不设上限。
func NewTextVectorizer(maxVocab int) *TextVectorizer {
	return &TextVectorizer{maxVocab: maxVocab}
}

// Dim 返回拟合后的词表大小；未拟合时为 0。
func (v *TextVectorizer) Dim() int {
	return len(v.vocab)
}

// Fit 在给定文档集上构建词表与 IDF。再次调用会整体替换旧词表。
func (v *TextVectorizer) Fit(docs []string) {
	counts := make(map[string]int)   // 语料总词频，用于词表截断
	df := make(map[string]int)       // 文档频次，用于 IDF
	for _, doc := range docs {
		tokens := tokenize(doc)
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			counts[tok]++
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	// 截断顺序：词频降序，并列按字典序
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if v.maxVocab > 0 && len(terms) > v.maxVocab {
		terms = terms[:v.maxVocab]
	}
	// 词表内索引按字典序分配
	sort.Strings(terms)

	v.vocab = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		v.vocab[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
}

// Transform 把任意文档映射到已拟合的词表空间。
// 词表外的词贡献为零；全部词都在词表外时返回零向量。
func (v *TextVectorizer) Transform(doc string) []float64 {
	vec := make([]float64, len(v.vocab))
	if len(v.vocab) == 0 {
		return vec
	}
	for _, tok := range tokenize(doc) {
		if i, ok := v.vocab[tok]; ok {
			vec[i] += v.idf[i]
		}
	}
	return vecmath.Normalize(vec)
}

func tokenize(doc string) []string {
	return tokenPattern.FindAllString(strings.ToLower(StripHTML(doc)), -1)
}
