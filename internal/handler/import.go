package handler

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
	"time"

	"crewsheet/internal/logger"
	"crewsheet/internal/model"
	"crewsheet/internal/service"
	"crewsheet/internal/sheet"
	"crewsheet/internal/week"

	"github.com/gin-gonic/gin"
)

// ImportHandler handles bulk spreadsheet uploads: preview parses and
// filters the workbook and caches the result under a token; confirm
// upserts the cached rows. The two-step flow lets the uploader see
// unmatched members and dropped rows before anything is written.
type ImportHandler struct {
	sheets *service.TimesheetService
	auth   *service.AuthService
	weeks  *week.Holder
	cache  sync.Map // token -> *importCache
}

type importCache struct {
	team      string
	rows      []sheet.ImportRow
	members   []model.Member
	createdAt time.Time
}

func NewImportHandler(sheets *service.TimesheetService, auth *service.AuthService, weeks *week.Holder) *ImportHandler {
	h := &ImportHandler{sheets: sheets, auth: auth, weeks: weeks}
	// Drop abandoned previews every 5 minutes
	go func() {
		log := logger.Component("import-cache")
		for range time.Tick(5 * time.Minute) {
			h.cache.Range(func(k, v any) bool {
				if time.Since(v.(*importCache).createdAt) > 10*time.Minute {
					h.cache.Delete(k)
					log.Info("expired preview dropped", "token", k)
				}
				return true
			})
		}
	}()
	return h
}

// Preview handles POST /api/teams/:team/import/preview — parse + filter,
// return rows for confirmation
func (h *ImportHandler) Preview(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	logger.Info("import preview: start", "team", c.Param("team"), "file", file.Filename, "size", file.Size)

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read upload failed"})
		return
	}
	defer src.Close()

	rows, err := sheet.ParseWorkbook(src)
	if err != nil {
		logger.Error("workbook parse failed", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Rows for weeks outside the rolling current-and-future window are
	// dropped so stale uploads cannot rewrite settled months.
	cal := h.weeks.Calendar()
	now := time.Now()
	var kept []sheet.ImportRow
	outOfWindow := 0
	for _, row := range rows {
		if sheet.InRecentWindow(cal, row.WeekID, now) {
			kept = append(kept, row)
		} else {
			outOfWindow++
		}
	}

	members, err := h.auth.TeamMembers(c.Request.Context(), c.Param("team"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	unmatchedSet := map[string]bool{}
	for _, row := range kept {
		if matchMember(row.MemberName, members) == "" {
			unmatchedSet[row.MemberName] = true
		}
	}
	var unmatched []string
	for name := range unmatchedSet {
		unmatched = append(unmatched, name)
	}

	token := genToken()
	h.cache.Store(token, &importCache{team: c.Param("team"), rows: kept, members: members, createdAt: now})

	logger.Info("import preview: done", "token", token, "rows", len(kept), "out_of_window", outOfWindow, "unmatched", len(unmatched))
	c.JSON(http.StatusOK, gin.H{
		"token":             token,
		"rows":              kept,
		"out_of_window":     outOfWindow,
		"unmatched_members": unmatched,
	})
}

// Confirm handles POST /api/teams/:team/import/confirm — upsert the
// previewed rows
func (h *ImportHandler) Confirm(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}

	val, ok := h.cache.LoadAndDelete(req.Token)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "preview expired, upload again"})
		return
	}
	cached := val.(*importCache)
	logger.Info("import confirm: start", "token", req.Token, "rows", len(cached.rows))

	ctx := c.Request.Context()
	cal := h.weeks.Calendar()
	now := time.Now()

	// Group rows into one entry per (week, member), skipping unmatched
	// members. An existing stored entry is loaded so a partial upload
	// only overwrites the work types it mentions.
	type entryKey struct{ weekID, memberID string }
	entries := map[entryKey]*sheet.Entry{}
	skipped := 0
	var skippedMembers []string
	skippedSet := map[string]bool{}

	for _, row := range cached.rows {
		memberID := matchMember(row.MemberName, cached.members)
		if memberID == "" {
			if !skippedSet[row.MemberName] {
				skippedSet[row.MemberName] = true
				skippedMembers = append(skippedMembers, row.MemberName)
			}
			skipped++
			continue
		}
		key := entryKey{row.WeekID, memberID}
		entry := entries[key]
		if entry == nil {
			stored, found, err := h.sheets.Load(ctx, cached.team, row.WeekID, memberID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if found {
				entry = stored
			} else {
				template, ok := sheet.NewTemplate(cal, row.WeekID, memberID, now)
				if !ok {
					skipped++
					continue
				}
				entry = template
			}
			entries[key] = entry
		}
		entry.WorkTypes[row.WorkType] = row.Values
	}

	imported := 0
	for _, entry := range entries {
		if result := sheet.Validate(cal, entry); !result.Valid {
			logger.Warn("import row invalid, skipped", "week", entry.WeekID, "member", entry.MemberID, "errors", result.Errors)
			skipped++
			continue
		}
		if err := h.sheets.Save(ctx, cached.team, entry); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		imported++
	}

	logger.Info("import confirm: done", "imported", imported, "skipped", skipped)
	c.JSON(http.StatusOK, gin.H{
		"imported":        imported,
		"skipped":         skipped,
		"skipped_members": skippedMembers,
		"total":           len(cached.rows),
	})
}

// matchMember resolves a spreadsheet name to a member id: exact name
// match first, then substring in either direction.
func matchMember(name string, members []model.Member) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	for _, m := range members {
		if m.Name == name || m.Username == name {
			return m.Username
		}
	}
	for _, m := range members {
		if strings.Contains(m.Name, name) || strings.Contains(name, m.Name) {
			return m.Username
		}
	}
	return ""
}

func genToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
