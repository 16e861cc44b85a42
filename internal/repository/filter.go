package repository

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatFilter 会话过滤条件
type ChatFilter struct {
	Search   string // 标题或消息内容的字面子串匹配
	DateFrom string // YYYY-MM-DD
	DateTo   string // YYYY-MM-DD
}

const dateLayout = "2006-01-02"

// BuildFilter 由过滤条件构造 Mongo 查询
// Search 转义所有正则元字符后做大小写不敏感匹配, 对 title 与 messages.content 取 OR;
// 日期解析失败时丢弃整个日期约束, 其余条件继续生效; 空条件匹配全部
func BuildFilter(f ChatFilter) bson.M {
	query := bson.M{}

	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"messages.content": pattern},
		}
	}

	dateRange := bson.M{}
	valid := true
	if f.DateFrom != "" {
		from, err := time.ParseInLocation(dateLayout, f.DateFrom, time.UTC)
		if err != nil {
			valid = false
		} else {
			dateRange["$gte"] = from
		}
	}
	if f.DateTo != "" {
		to, err := time.ParseInLocation(dateLayout, f.DateTo, time.UTC)
		if err != nil {
			valid = false
		} else {
			// 当天最后一刻; Mongo 时间精度为毫秒
			dateRange["$lte"] = to.Add(24*time.Hour - time.Millisecond)
		}
	}
	if !valid {
		dateRange = bson.M{}
	}
	if len(dateRange) > 0 {
		query["created_at"] = dateRange
	}

	return query
}
