package main

import (
	"context"
	"flag"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ChangeLaterX/Cookify-sub001/models"
	"github.com/ChangeLaterX/Cookify-sub001/pkg/receipt"
)

// Global DB handle for helper funcs
var db *gorm.DB

// global flags (parsed in main)
var verbose bool

// scanState caches existing scan rows so reprocessing a directory stays
// idempotent without a per-file query.
type scanState struct {
	scansByFile map[string]*models.ReceiptScan
	mu          sync.RWMutex
}

func newScanState() *scanState {
	return &scanState{scansByFile: make(map[string]*models.ReceiptScan, 1024)}
}

func (ss *scanState) get(name string) (*models.ReceiptScan, bool) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	s, ok := ss.scansByFile[name]
	return s, ok
}

func (ss *scanState) put(s *models.ReceiptScan) {
	ss.mu.Lock()
	ss.scansByFile[s.FileName] = s
	ss.mu.Unlock()
}

func mustInitDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatalf("DB_DSN must be set in environment to run this tool")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return gdb
}

// dbCatalog mirrors the server's ingredient lookup; process binaries cannot
// import the root package so the adapter is duplicated here.
type dbCatalog struct {
	db *gorm.DB
}

func (c *dbCatalog) SearchIngredients(ctx context.Context, query string) ([]receipt.Candidate, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}
	tx := c.db.WithContext(ctx).Model(&models.Ingredient{})
	conds := tx.Where("name ILIKE ?", "%"+q+"%")
	for _, word := range strings.Fields(q) {
		if len(word) < 3 {
			continue
		}
		conds = conds.Or("name ILIKE ?", word+"%").Or("name ILIKE ?", "% "+word+"%")
	}
	var rows []models.Ingredient
	if err := tx.Where(conds).Order("id").Limit(25).Find(&rows).Error; err != nil {
		return nil, err
	}
	cands := make([]receipt.Candidate, 0, len(rows))
	for _, row := range rows {
		cands = append(cands, receipt.Candidate{ID: row.ID, Name: row.Name})
	}
	return cands, nil
}

// Main: scans a directory of receipt images, runs the OCR pipeline and records ReceiptScan rows, optional watch mode.
func main() {
	dirFlag := flag.String("dir", "public/receipts", "directory to scan for receipt images")
	userID := flag.Uint("user-id", 0, "User ID to assign scans to (if omitted attempts admin user)")
	dryRun := flag.Bool("dry-run", false, "Skip all DB writes; just run the pipeline and print item counts")
	watch := flag.Bool("watch", false, "Watch directory for new files")
	workers := flag.Int("workers", 0, "Worker pool size (default NumCPU)")
	flag.BoolVar(&verbose, "verbose", false, "Verbose per-file logging")
	flag.Parse()

	if *dryRun {
		runDry(*dirFlag)
		return
	}

	db = mustInitDBFromEnv()
	user := resolveUser(*userID)
	svc := receipt.NewService(&dbCatalog{db: db})

	ss := preloadScans(user)
	log.Printf("Preloaded: scans=%d", len(ss.scansByFile))

	files := listImageFiles(*dirFlag)
	log.Printf("Scanning %d files (workers=%d)", len(files), effectiveWorkers(*workers))
	runWorkerPool(*dirFlag, user, svc, ss, files, effectiveWorkers(*workers))

	if *watch {
		if err := watchDirectory(*dirFlag, user, svc, ss, effectiveWorkers(*workers)); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	}
}

// runDry processes files without any DB interaction. The catalog is an empty
// stub, so items come back without suggestions.
func runDry(dir string) {
	log.Printf("Dry-run: scanning %s (no DB interaction)", dir)
	files := listImageFiles(dir)
	log.Printf("Found %d candidate files", len(files))
	svc := receipt.NewService(emptyCatalog{})
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			log.Printf("read fail %s: %v", f, err)
			continue
		}
		res, err := svc.Process(context.Background(), data)
		if err != nil {
			log.Printf("pipeline fail %s: %v", f, err)
			continue
		}
		log.Printf("%s: %d items in %dms", f, res.TotalItemsDetected, res.ProcessingTimeMS)
	}
}

type emptyCatalog struct{}

func (emptyCatalog) SearchIngredients(ctx context.Context, query string) ([]receipt.Candidate, error) {
	return nil, nil
}

func effectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

func logV(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// preloadScans fetches existing scans to minimize per-file queries.
func preloadScans(user models.User) *scanState {
	ss := newScanState()
	var scans []models.ReceiptScan
	if err := db.Where("user_id = ?", user.ID).Find(&scans).Error; err == nil {
		for i := range scans {
			s := scans[i]
			ss.scansByFile[s.FileName] = &s
		}
	}
	return ss
}

// resolveUser finds the user either by explicit id or by admin username.
func resolveUser(id uint) models.User {
	var u models.User
	if id != 0 {
		if err := db.First(&u, id).Error; err != nil {
			log.Fatalf("failed to find user id %d: %v", id, err)
		}
		return u
	}
	if err := db.Where("username = ?", "admin").First(&u).Error; err != nil {
		log.Fatalf("no --user-id provided and admin user not found: %v", err)
	}
	return u
}

func listImageFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func watchDirectory(dir string, user models.User, svc *receipt.Service, ss *scanState, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	log.Printf("Watching %s (debounced) ...", dir)

	fileCh := make(chan string, 256)
	go func() {
		// simple debounce map of pending files
		pending := map[string]time.Time{}
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					close(fileCh)
					return
				}
				if ev.Op&fsnotify.Create == fsnotify.Create {
					name := filepath.Base(ev.Name)
					if !isSupportedExt(name) {
						continue
					}
					pending[name] = time.Now()
				}
			case <-ticker.C:
				now := time.Now()
				for name, t := range pending {
					if now.Sub(t) > 300*time.Millisecond { // stable
						fileCh <- name
						delete(pending, name)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					close(fileCh)
					return
				}
				log.Printf("watch error: %v", err)
			}
		}
	}()

	// Use worker pool for watch events too
	go runWorkerPool(dir, user, svc, ss, nil, workers, fileCh)
	// block forever (Ctrl+C to exit)
	select {}
}

func isSupportedExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	}
	return false
}

// worker pool orchestrator
func runWorkerPool(dir string, user models.User, svc *receipt.Service, ss *scanState, initial []string, workers int, extraCh ...<-chan string) {
	fileCh := make(chan string, 1024)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range fileCh {
				processSingleFile(dir, name, user, svc, ss)
			}
		}()
	}
	// feed initial
	go func() {
		for _, f := range initial {
			fileCh <- f
		}
		// also relay from extra channels if provided
		for _, ch := range extraCh {
			go func(c <-chan string) {
				for n := range c {
					fileCh <- n
				}
			}(ch)
		}
		// if no extraCh (scan only) close when done
		if len(extraCh) == 0 {
			close(fileCh)
		}
	}()
	if len(extraCh) == 0 {
		wg.Wait()
	}
}

// processSingleFile runs the pipeline for one file using the preloaded map to stay idempotent.
func processSingleFile(dir, name string, user models.User, svc *receipt.Service, ss *scanState) {
	if _, ok := ss.get(name); ok { // scan already recorded
		logV("SKIP scan exists %s", name)
		return
	}
	filePath := filepath.Join(dir, name)
	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Printf("ERROR read %s: %v", name, err)
		return
	}

	res, procErr := svc.Process(context.Background(), data)

	scan := models.ReceiptScan{
		UserID:       user.ID,
		FileName:     name,
		RawText:      res.RawText,
		ItemCount:    res.TotalItemsDetected,
		ProcessingMS: res.ProcessingTimeMS,
	}
	if procErr != nil {
		scan.Failed = true
		scan.FailedReason = procErr.Error()
	}
	if err := db.Create(&scan).Error; err != nil {
		if isUniqueConstraintError(err) { // race: someone else recorded it
			var existing models.ReceiptScan
			if err2 := db.Where("user_id = ? AND file_name = ?", user.ID, name).First(&existing).Error; err2 == nil {
				ss.put(&existing)
			}
		} else {
			log.Printf("ERROR create scan %s: %v", name, err)
		}
		return
	}
	ss.put(&scan)
	if procErr != nil {
		log.Printf("FAILED file=%s: %v", name, procErr)
		return
	}
	log.Printf("SCAN items=%d file=%s id=%d", scan.ItemCount, name, scan.ID)
	// Move the processed file out of the inbox so new images are processed only once
	if err := moveToProcessed(filePath, name); err != nil {
		log.Printf("WARN failed to move processed file %s: %v", name, err)
	} else {
		logV("moved processed %s to public/processed", name)
	}
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}

// moveToProcessed moves a file into public/processed/<name>. It attempts an
// atomic rename and falls back to copy+remove; oversized images are downscaled
// to keep the archive small.
func moveToProcessed(srcFullPath, name string) error {
	const maxBytes = 1_000_000 // 1 MB budget
	processedDir := filepath.Join("public", "processed")
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(processedDir, name)

	fi, err := os.Stat(srcFullPath)
	if err != nil {
		return err
	}
	// Fast path: already small enough -> attempt rename/copy
	if fi.Size() <= maxBytes {
		if err := os.Rename(srcFullPath, dst); err == nil {
			return nil
		}
		return copyRemove(srcFullPath, dst)
	}
	// Need compression / resizing
	img, err := imaging.Open(srcFullPath)
	if err != nil { // fallback to raw move if cannot decode
		if err := os.Rename(srcFullPath, dst); err == nil {
			return nil
		}
		return copyRemove(srcFullPath, dst)
	}
	// Estimate scale factor based on sqrt(max/current) (size roughly scales with area)
	scale := math.Sqrt(float64(maxBytes) / float64(fi.Size()))
	if scale > 0.95 { // still enforce some small reduction to help container formats
		scale = 0.95
	}
	if scale < 0.1 { // avoid absurd downscale
		scale = 0.1
	}
	if scale < 1 {
		w := img.Bounds().Dx()
		h := img.Bounds().Dy()
		newW := int(math.Max(1, math.Round(float64(w)*scale)))
		newH := int(math.Max(1, math.Round(float64(h)*scale)))
		img = imaging.Resize(img, newW, newH, imaging.Lanczos)
	}
	// Save to dst (overwrite if exists)
	if err := imaging.Save(img, dst); err != nil {
		// fallback to original move
		if err := os.Rename(srcFullPath, dst); err == nil {
			return nil
		}
		return copyRemove(srcFullPath, dst)
	}
	// Remove original after successful save
	_ = os.Remove(srcFullPath)
	// If still > maxBytes, try one more uniform 80% scale pass
	if fi2, err2 := os.Stat(dst); err2 == nil && fi2.Size() > maxBytes {
		img2, errOpen2 := imaging.Open(dst)
		if errOpen2 == nil {
			img2 = imaging.Resize(img2, int(float64(img2.Bounds().Dx())*0.8), 0, imaging.Lanczos)
			_ = imaging.Save(img2, dst)
		}
	}
	return nil
}

func copyRemove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	_ = out.Close()
	if err := os.Remove(src); err != nil {
		return err
	}
	return nil
}
