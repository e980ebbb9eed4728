package core

// 交互信号。唯一性约束由数据层保证：
// Like 对 (UserID, PostID) 唯一，Follow 对 (UserID, AuthorID) 唯一；
// Read 与 Comment 每条都是独立记录。

type Like struct {
	UserID int64
	PostID int64
}

type Read struct {
	UserID  int64
	PostID  int64
	Seconds int // 单次阅读时长（秒）
}

type Comment struct {
	UserID int64
	PostID int64
}

type Follow struct {
	UserID   int64
	AuthorID int64
}
