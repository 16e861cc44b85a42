package repository

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name        string
		page        int
		perPage     int
		wantPage    int
		wantPerPage int
	}{
		{"正常值原样返回", 3, 10, 3, 10},
		{"页码为零钳到 1", 0, 10, 1, 10},
		{"页码为负钳到 1", -5, 10, 1, 10},
		{"页大小为零钳到 1", 2, 0, 2, 1},
		{"两者同时越界", -1, -1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, perPage := NormalizePage(tt.page, tt.perPage)
			if page != tt.wantPage || perPage != tt.wantPerPage {
				t.Errorf("NormalizePage(%d, %d) = (%d, %d), want (%d, %d)",
					tt.page, tt.perPage, page, perPage, tt.wantPage, tt.wantPerPage)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name    string
		total   int64
		perPage int
		want    int
	}{
		{"整除", 20, 10, 2},
		{"有余数向上取整", 25, 10, 3},
		{"不足一页", 3, 10, 1},
		{"空集为零页", 0, 10, 0},
		{"页大小非法", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalPages(tt.total, tt.perPage); got != tt.want {
				t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.perPage, got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	Convey("Preview 生成列表预览", t, func() {
		Convey("空内容返回空会话占位", func() {
			So(Preview(""), ShouldEqual, "[empty chat]")
		})

		Convey("短内容也追加省略号", func() {
			So(Preview("hi"), ShouldEqual, "hi...")
		})

		Convey("超长内容按 rune 截断到 50", func() {
			long := strings.Repeat("a", 80)
			got := Preview(long)
			So(got, ShouldEqual, strings.Repeat("a", 50)+"...")
		})

		Convey("多字节字符不会被截成半个", func() {
			long := strings.Repeat("测", 60)
			got := Preview(long)
			So(got, ShouldEqual, strings.Repeat("测", 50)+"...")
		})

		Convey("恰好 50 个字符不截断", func() {
			exact := strings.Repeat("x", 50)
			So(Preview(exact), ShouldEqual, exact+"...")
		})
	})
}
