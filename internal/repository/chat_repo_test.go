package repository

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"parley/internal/model"
)

func TestChatRepo_ValidationBeforeStorage(t *testing.T) {
	Convey("参数校验发生在任何存储调用之前", t, func() {
		ctx := context.Background()
		// 校验失败的路径不会触达集合, 零值仓库即可验证
		repo := &ChatRepo{}

		Convey("AppendMessage 拒绝 user/assistant 之外的角色", func() {
			err := repo.AppendMessage(ctx, "65a1b2c3d4e5f6a7b8c9d0e1", "system", "hi")
			So(errors.Is(err, ErrInvalidRole), ShouldBeTrue)

			err = repo.AppendMessage(ctx, "65a1b2c3d4e5f6a7b8c9d0e1", "tool", "hi")
			So(errors.Is(err, ErrInvalidRole), ShouldBeTrue)
		})

		Convey("AppendMessage 拒绝格式非法的 ID", func() {
			err := repo.AppendMessage(ctx, "not-an-object-id", model.RoleUser, "hi")
			So(errors.Is(err, ErrInvalidID), ShouldBeTrue)
		})

		Convey("角色校验先于 ID 校验", func() {
			err := repo.AppendMessage(ctx, "also-bad", "system", "hi")
			So(errors.Is(err, ErrInvalidRole), ShouldBeTrue)
		})

		Convey("PatchLastAssistantMeta 拒绝格式非法的 ID", func() {
			err := repo.PatchLastAssistantMeta(ctx, "bad", map[string]any{"processing_time": 1.23})
			So(errors.Is(err, ErrInvalidID), ShouldBeTrue)
		})

		Convey("FindByID 拒绝格式非法的 ID", func() {
			_, err := repo.FindByID(ctx, "bad")
			So(errors.Is(err, ErrInvalidID), ShouldBeTrue)
		})

		Convey("History 拒绝格式非法的 ID", func() {
			_, err := repo.History(ctx, "bad")
			So(errors.Is(err, ErrInvalidID), ShouldBeTrue)
		})

		Convey("Delete 拒绝格式非法的 ID", func() {
			err := repo.Delete(ctx, "bad")
			So(errors.Is(err, ErrInvalidID), ShouldBeTrue)
		})
	})
}
