package statistics

import (
	"log"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/gamehaven/GameHaven/app/models"
	"github.com/gamehaven/GameHaven/internal/pkg/cache"
	"github.com/gamehaven/GameHaven/internal/pkg/database"
)

const (
	CacheKeyUsers         = "statistics:users:total"
	CacheKeyGames         = "statistics:games:total"
	CacheKeySubscriptions = "statistics:subscriptions:active"
	CacheExpiration       = 30 * time.Minute
)

// StatisticsData holds the portal statistics shown on the start page
type StatisticsData struct {
	TotalUsers          int
	TotalGames          int
	ActiveSubscriptions int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached counters are stale
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cached counters when they are stale
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error updating statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next UpdateCacheIfNeeded call to refresh
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache recounts and stores all portal counters in the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting total users: %v", err)
		return err
	}

	var totalGames int64
	if err := db.Model(&models.Game{}).Count(&totalGames).Error; err != nil {
		log.Printf("Error counting total games: %v", err)
		return err
	}

	var activeSubscriptions int64
	if err := db.Model(&models.Subscription{}).Where("is_active = ?", models.StringBool(true)).Count(&activeSubscriptions).Error; err != nil {
		log.Printf("Error counting active subscriptions: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyUsers, strconv.FormatInt(totalUsers, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total users: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyGames, strconv.FormatInt(totalGames, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total games: %v", err)
		return err
	}

	if err := cache.Set(CacheKeySubscriptions, strconv.FormatInt(activeSubscriptions, 10), CacheExpiration); err != nil {
		log.Printf("Error caching active subscriptions: %v", err)
		return err
	}

	log.Printf("Statistics updated in cache: Users: %d, Games: %d, Active Subscriptions: %d",
		totalUsers, totalGames, activeSubscriptions)

	return nil
}

// GetTotalUsers returns the total number of users from cache or database
func GetTotalUsers() int {
	return cachedCount(CacheKeyUsers, func(db *gorm.DB) (int64, error) {
		var count int64
		err := db.Model(&models.User{}).Count(&count).Error
		return count, err
	})
}

// GetTotalGames returns the total number of games from cache or database
func GetTotalGames() int {
	return cachedCount(CacheKeyGames, func(db *gorm.DB) (int64, error) {
		var count int64
		err := db.Model(&models.Game{}).Count(&count).Error
		return count, err
	})
}

// GetActiveSubscriptions returns the number of active subscriptions from cache or database
func GetActiveSubscriptions() int {
	return cachedCount(CacheKeySubscriptions, func(db *gorm.DB) (int64, error) {
		var count int64
		err := db.Model(&models.Subscription{}).Where("is_active = ?", models.StringBool(true)).Count(&count).Error
		return count, err
	})
}

func cachedCount(key string, countFn func(db *gorm.DB) (int64, error)) int {
	val, err := cache.Get(key)
	if err != nil {
		count, err := countFn(database.GetDB())
		if err != nil {
			log.Printf("Error counting for %s: %v", key, err)
			return 0
		}

		if err := cache.Set(key, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching %s: %v", key, err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetStatisticsData returns all portal counters as a StatisticsData structure
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TotalUsers:          GetTotalUsers(),
		TotalGames:          GetTotalGames(),
		ActiveSubscriptions: GetActiveSubscriptions(),
	}
}
