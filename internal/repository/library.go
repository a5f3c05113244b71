package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/user/watchbase/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LibraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// libraryUpsertColumns 冲突时整体覆盖的字段（展示缓存 + 状态字段）
var libraryUpsertColumns = []string{
	"title", "overview", "poster_path", "backdrop_path", "release_date",
	"genre_ids", "category", "personal_rating", "community_rating",
	"start_date", "finish_date", "updated_at",
}

// Upsert 创建或更新片库条目
// (catalog_id, is_movie) 已存在时覆盖全部展示和状态字段
func (r *LibraryRepository) Upsert(entry *model.LibraryEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.UpdatedAt = time.Now()
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "catalog_id"}, {Name: "is_movie"}},
		DoUpdates: clause.AssignmentColumns(libraryUpsertColumns),
	}).Create(entry).Error
	return storageErr("保存片库条目", err)
}

// Get 查找片库条目，不存在返回 nil
func (r *LibraryRepository) Get(catalogID int, isMovie bool) (*model.LibraryEntry, error) {
	var entry model.LibraryEntry
	err := r.db.Where("catalog_id = ? AND is_movie = ?", catalogID, isMovie).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageErr("查询片库条目", err)
	}
	return &entry, nil
}

// SetCategory 只更新观看状态（对账路径使用）
func (r *LibraryRepository) SetCategory(catalogID int, isMovie bool, category string) error {
	err := r.db.Model(&model.LibraryEntry{}).
		Where("catalog_id = ? AND is_movie = ?", catalogID, isMovie).
		Updates(map[string]interface{}{
			"category":   category,
			"updated_at": time.Now(),
		}).Error
	return storageErr("更新观看状态", err)
}

// SetRating 更新个人评分
func (r *LibraryRepository) SetRating(catalogID int, isMovie bool, rating *float64) error {
	err := r.db.Model(&model.LibraryEntry{}).
		Where("catalog_id = ? AND is_movie = ?", catalogID, isMovie).
		Updates(map[string]interface{}{
			"personal_rating": rating,
			"updated_at":      time.Now(),
		}).Error
	return storageErr("更新个人评分", err)
}

// SetDates 更新个人开始/看完日期，空串表示清除
func (r *LibraryRepository) SetDates(catalogID int, isMovie bool, startDate, finishDate string) error {
	err := r.db.Model(&model.LibraryEntry{}).
		Where("catalog_id = ? AND is_movie = ?", catalogID, isMovie).
		Updates(map[string]interface{}{
			"start_date":  startDate,
			"finish_date": finishDate,
			"updated_at":  time.Now(),
		}).Error
	return storageErr("更新个人日期", err)
}

// Delete 删除片库条目，并级联删除其全部剧集记录
func (r *LibraryRepository) Delete(catalogID int, isMovie bool) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if !isMovie {
			if err := tx.Where("catalog_id = ?", catalogID).Delete(&model.EpisodeEntry{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("catalog_id = ? AND is_movie = ?", catalogID, isMovie).
			Delete(&model.LibraryEntry{}).Error
	})
	return storageErr("删除片库条目", err)
}

// UpsertWithEpisode 在一个事务内写入条目和它的剧集行（批量导入的行级事务）
func (r *LibraryRepository) UpsertWithEpisode(entry *model.LibraryEntry, episode *model.EpisodeEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.UpdatedAt = time.Now()
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "catalog_id"}, {Name: "is_movie"}},
			DoUpdates: clause.AssignmentColumns(libraryUpsertColumns),
		}).Create(entry).Error; err != nil {
			return err
		}
		if episode == nil {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "catalog_id"}, {Name: "season"}, {Name: "episode"}},
			DoUpdates: clause.AssignmentColumns([]string{"watch_date", "rating", "review"}),
		}).Create(episode).Error
	})
	return storageErr("导入片库条目", err)
}

// 查询排序字段
const (
	OrderByID         = "id"
	OrderByRating     = "rating"
	OrderByRelease    = "release_date"
	OrderByStartDate  = "start_date"
	OrderByFinishDate = "finish_date"
)

// QueryFilter 片库查询条件
// 显式传入每次查询，不做跨请求的共享可变状态
type QueryFilter struct {
	Categories    []string `json:"categories"`
	IncludeGenres []int    `json:"include_genres"`
	ExcludeGenres []int    `json:"exclude_genres"`
	IsMovie       *bool    `json:"is_movie"`
	TitleLike     string   `json:"title_like"`
	OrderBy       string   `json:"order_by"`  // id | rating | release_date | start_date | finish_date
	Ascending     bool     `json:"ascending"` // 日期和评分默认降序
}

// Query 按条件查询片库
func (r *LibraryRepository) Query(f QueryFilter) ([]model.LibraryEntry, error) {
	q := r.db.Model(&model.LibraryEntry{})

	if len(f.Categories) > 0 {
		q = q.Where("category IN ?", f.Categories)
	}
	if f.IsMovie != nil {
		q = q.Where("is_movie = ?", *f.IsMovie)
	}
	if f.TitleLike != "" {
		q = q.Where("title LIKE ?", "%"+f.TitleLike+"%")
	}
	// 类型 ID 存成逗号分隔串，两端补逗号后做包含匹配，避免 1 误匹配 12
	for _, g := range f.IncludeGenres {
		q = q.Where("(',' || genre_ids || ',') LIKE ?", fmt.Sprintf("%%,%d,%%", g))
	}
	for _, g := range f.ExcludeGenres {
		q = q.Where("(',' || genre_ids || ',') NOT LIKE ?", fmt.Sprintf("%%,%d,%%", g))
	}

	dir := "DESC"
	if f.Ascending {
		dir = "ASC"
	}
	switch f.OrderBy {
	case OrderByRating:
		// 没有个人评分的排最后
		q = q.Order("CASE WHEN personal_rating IS NULL THEN 1 ELSE 0 END").
			Order("personal_rating " + dir)
	case OrderByRelease, OrderByStartDate, OrderByFinishDate:
		// 缺失日期的排最后，日期默认降序
		col := f.OrderBy
		q = q.Order(fmt.Sprintf("CASE WHEN %s IS NULL OR %s = '' THEN 1 ELSE 0 END", col, col)).
			Order(col + " " + dir)
	default:
		if f.Ascending {
			q = q.Order("id ASC")
		} else {
			q = q.Order("id DESC")
		}
	}

	var entries []model.LibraryEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, storageErr("查询片库", err)
	}
	return entries, nil
}

// CountByCategory 统计各观看状态的条目数
func (r *LibraryRepository) CountByCategory() (map[string]int64, error) {
	type row struct {
		Category string
		Count    int64
	}
	var rows []row
	err := r.db.Model(&model.LibraryEntry{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr("统计片库", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Category] = r.Count
	}
	return counts, nil
}
