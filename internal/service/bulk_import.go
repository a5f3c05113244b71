package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"github.com/user/watchbase/internal/config"
	"github.com/user/watchbase/internal/model"
	"github.com/user/watchbase/internal/repository"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// BulkImportService 批量文本导入
// 调用方声明分隔符和列映射，每行独立并发导入（行间无依赖，完成顺序不保证与文件顺序一致），
// 缺失字段可用目录服务回填，回填请求过令牌桶限流
type BulkImportService struct {
	libRepo *repository.LibraryRepository
	tmdb    *TMDBService
	config  *config.Config
	limiter *rate.Limiter
	workers int
}

func NewBulkImportService(libRepo *repository.LibraryRepository, tmdb *TMDBService, cfg *config.Config) *BulkImportService {
	return &BulkImportService{
		libRepo: libRepo,
		tmdb:    tmdb,
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.ImportRateLimit), 1),
		workers: cfg.ImportWorkers,
	}
}

// ImportReport 导入的最终状态，取消时也会给出（部分进度）
type ImportReport struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"` // 缺少可用标识，无法有意义地入库
	Failed   int `json:"failed"`  // 行解析失败或本地写入失败
}

// ProgressFunc 行级进度回调（done 可能乱序递增）
type ProgressFunc func(done, total int)

// Run 执行一次导入
// 首行是表头（映射由调用方提供，这里只跳过）；行级错误只计数，不中断整体
func (s *BulkImportService) Run(ctx context.Context, r io.Reader, mapping *model.ImportMapping, progress ProgressFunc) (*ImportReport, error) {
	report := &ImportReport{}

	if err := mapping.Validate(); err != nil {
		return report, err
	}

	reader := csv.NewReader(r)
	reader.Comma = []rune(mapping.Delimiter)[0]
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// 表头行
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return report, fmt.Errorf("%w: 导入文件为空", model.ErrValidation)
		}
		return report, fmt.Errorf("%w: 读取表头失败: %v", model.ErrParse, err)
	}

	// 先把行读完：坏行跳过计数，好行进入并发导入
	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.Total++
			report.Failed++
			log.WithField("error", err).Warn("[导入] 行解析失败，已跳过")
			continue
		}
		rows = append(rows, record)
	}
	report.Total += len(rows)

	var imported, skipped, failed, done int64
	total := len(rows)

	g := new(errgroup.Group)
	g.SetLimit(s.workers)

	var cancelled error
	for _, row := range rows {
		// 取消后不再启动新行，已在途的行允许完成并提交
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}

		row := row
		g.Go(func() error {
			err := s.importRow(ctx, row, mapping)
			switch {
			case err == nil:
				atomic.AddInt64(&imported, 1)
			case errors.Is(err, model.ErrValidation):
				atomic.AddInt64(&skipped, 1)
				log.WithField("error", err).Info("[导入] 行被跳过")
			default:
				atomic.AddInt64(&failed, 1)
				log.WithField("error", err).Warn("[导入] 行导入失败")
			}
			if progress != nil {
				progress(int(atomic.AddInt64(&done, 1)), total)
			}
			return nil
		})
	}
	g.Wait()

	report.Imported = int(imported)
	report.Skipped += int(skipped)
	report.Failed += int(failed)

	log.WithFields(log.Fields{
		"total":    report.Total,
		"imported": report.Imported,
		"skipped":  report.Skipped,
		"failed":   report.Failed,
	}).Info("[导入] 批量导入结束")
	return report, cancelled
}

// importRow 导入单行：默认值打底，映射列覆盖，缺失字段回填，最后一行一个事务入库
func (s *BulkImportService) importRow(ctx context.Context, row []string, mapping *model.ImportMapping) error {
	get := func(field string) string {
		col := mapping.Column(field)
		if col < 0 || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	entry := &model.LibraryEntry{
		CatalogID:       parseIntOrZero(get(model.FieldCatalogID)),
		IsMovie:         s.resolveIsMovie(get(model.FieldIsMovie), mapping),
		Title:           cleanValue(get(model.FieldTitle)),
		Overview:        cleanValue(get(model.FieldOverview)),
		PosterPath:      cleanValue(get(model.FieldPosterPath)),
		BackdropPath:    cleanValue(get(model.FieldBackdropPath)),
		ReleaseDate:     cleanValue(get(model.FieldReleaseDate)),
		GenreIDs:        cleanValue(get(model.FieldGenreIDs)),
		Category:        model.CategoryWatched,
		PersonalRating:  parseFloatOrNil(get(model.FieldPersonalRating)),
		CommunityRating: 0.0,
		StartDate:       cleanValue(get(model.FieldStartDate)),
		FinishDate:      cleanValue(get(model.FieldFinishDate)),
	}
	if category := get(model.FieldCategory); model.IsValidCategory(category) {
		entry.Category = category
	}
	if rating := parseFloatOrNil(get(model.FieldCommunityRating)); rating != nil {
		entry.CommunityRating = *rating
	}

	// 既没有目录 ID 也没有标题的行无法有意义地入库
	if entry.CatalogID <= 0 && entry.Title == "" {
		return fmt.Errorf("%w: 行缺少目录 ID 和标题", model.ErrValidation)
	}

	s.backfill(ctx, entry)

	var episode *model.EpisodeEntry
	season := parseIntOrZero(get(model.FieldSeason))
	episodeNum := parseIntOrZero(get(model.FieldEpisode))
	if season > 0 && episodeNum > 0 {
		episode = &model.EpisodeEntry{
			CatalogID: entry.CatalogID,
			Season:    season,
			Episode:   episodeNum,
			WatchDate: cleanValue(get(model.FieldWatchDate)),
			Rating:    parseFloatOrNil(get(model.FieldPersonalRating)),
			Review:    cleanValue(get(model.FieldReview)),
		}
	}

	return s.libRepo.UpsertWithEpisode(entry, episode)
}

// backfill 从目录服务补全缺失字段，已有的值绝不覆盖
// 拉不到详情不算失败，行照常入库
func (s *BulkImportService) backfill(ctx context.Context, entry *model.LibraryEntry) {
	if entry.CatalogID <= 0 || s.config.TMDBToken == "" || !s.needsBackfill(entry) {
		return
	}

	// 限流：令牌不够就等，不报错
	if err := s.limiter.Wait(ctx); err != nil {
		return
	}

	itemType := model.ItemTypeShow
	if entry.IsMovie {
		itemType = model.ItemTypeMovie
	}
	detail, err := s.tmdb.FetchDetail(ctx, entry.CatalogID, itemType)
	if err != nil {
		log.WithFields(log.Fields{"catalog_id": entry.CatalogID, "error": err}).
			Warn("[导入] 回填目录详情失败")
		return
	}

	if entry.Title == "" {
		entry.Title = detail.Name
	}
	if entry.Overview == "" {
		entry.Overview = detail.Overview
	}
	if entry.PosterPath == "" {
		entry.PosterPath = detail.PosterPath
	}
	if entry.BackdropPath == "" {
		entry.BackdropPath = detail.BackdropPath
	}
	if entry.ReleaseDate == "" {
		entry.ReleaseDate = detail.ReleaseDate
	}
	if entry.GenreIDs == "" {
		entry.GenreIDs = detail.GenreIDs
	}
	if entry.CommunityRating == 0 {
		entry.CommunityRating = detail.VoteAverage
	}
}

func (s *BulkImportService) needsBackfill(entry *model.LibraryEntry) bool {
	return entry.Title == "" || entry.Overview == "" || entry.PosterPath == "" ||
		entry.BackdropPath == "" || entry.ReleaseDate == "" || entry.GenreIDs == "" ||
		entry.CommunityRating == 0
}

// resolveIsMovie 行值优先，其次映射里的会话默认值，最后兜底按电影处理
func (s *BulkImportService) resolveIsMovie(value string, mapping *model.ImportMapping) bool {
	switch strings.ToLower(cleanValue(value)) {
	case "1", "true", "movie", "film":
		return true
	case "0", "false", "tv", "show", "series":
		return false
	}
	if mapping.DefaultIsMovie != nil {
		return *mapping.DefaultIsMovie
	}
	return true
}

// cleanValue 占位值视同缺失
func cleanValue(v string) string {
	switch strings.ToLower(v) {
	case "n/a", "null", "none", "-":
		return ""
	}
	return v
}

func parseIntOrZero(v string) int {
	n, err := strconv.Atoi(cleanValue(v))
	if err != nil {
		return 0
	}
	return n
}

func parseFloatOrNil(v string) *float64 {
	f, err := strconv.ParseFloat(cleanValue(v), 64)
	if err != nil {
		return nil
	}
	return &f
}

// SetRate 调整回填限流速率
func (s *BulkImportService) SetRate(perSecond float64) {
	s.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
}
