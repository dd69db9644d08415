package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	newsdomain "newsportal/internal/domain/news"
	"newsportal/internal/repository"

	"gorm.io/gorm"
)

// ListTags 返回全部标签及其下文章数。
func (s *Service) ListTags(ctx context.Context) ([]repository.TagWithCount, error) {
	return s.tags.ListWithNewsCount(ctx)
}

// CreateTag 新建标签，已有同名标签时报 ErrTagExists。
func (s *Service) CreateTag(ctx context.Context, name string) (*newsdomain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyField
	}

	tag, created, err := s.tags.GetOrCreate(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	if !created {
		return nil, ErrTagExists
	}
	s.logger.Infow("tag created", "tag_id", tag.ID, "name", tag.Name)
	return tag, nil
}

// RenameTag 修改标签名：同名视为未修改，撞上其他标签时报重复。
func (s *Service) RenameTag(ctx context.Context, tagID uint64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyField
	}

	tag, err := s.tags.FindByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("find tag: %w", err)
	}
	if tag.Name == name {
		return ErrTagUnchanged
	}

	taken, err := s.tags.ExistsByName(ctx, name)
	if err != nil {
		return fmt.Errorf("check tag name: %w", err)
	}
	if taken {
		return ErrTagExists
	}

	if err := s.tags.Rename(ctx, tagID, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("rename tag: %w", err)
	}
	s.logger.Infow("tag renamed", "tag_id", tagID, "name", name)
	return nil
}

// DeleteTag 逻辑删除标签，其下文章的 tag_id 保持不变，前台按标签过滤时自然消失。
func (s *Service) DeleteTag(ctx context.Context, tagID uint64) error {
	if err := s.tags.SoftDelete(ctx, tagID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete tag: %w", err)
	}
	s.logger.Infow("tag deleted", "tag_id", tagID)
	return nil
}
