package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"zonelan-service/internal/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CacheStats estadísticas del caché
type CacheStats struct {
	Hits          int64
	Misses        int64
	TotalRequests int64
	TotalKeys     int
}

// MaterialCache implementa caché multi-nivel para materiales
type MaterialCache struct {
	// L1 Cache: Memoria local (más rápido)
	l1Cache map[int]*models.Material
	l1Mutex sync.RWMutex

	// L2 Cache: Redis (persistente)
	redisClient *redis.Client

	// Configuración
	maxL1Size int
	ttl       time.Duration

	logger *zap.Logger

	// Estadísticas
	statsMutex sync.RWMutex
	hits       int64
	misses     int64
}

// NewMaterialCache crea una nueva instancia del caché
func NewMaterialCache(redisClient *redis.Client, maxL1Size int, ttl time.Duration, logger *zap.Logger) *MaterialCache {
	mc := &MaterialCache{
		l1Cache:     make(map[int]*models.Material),
		redisClient: redisClient,
		maxL1Size:   maxL1Size,
		ttl:         ttl,
		logger:      logger,
	}

	// Iniciar limpieza periódica del L1 cache
	go mc.cleanupL1Cache()

	return mc
}

// GetStats retorna estadísticas del caché
func (mc *MaterialCache) GetStats() CacheStats {
	mc.statsMutex.RLock()
	defer mc.statsMutex.RUnlock()

	mc.l1Mutex.RLock()
	totalKeys := len(mc.l1Cache)
	mc.l1Mutex.RUnlock()

	return CacheStats{
		Hits:          mc.hits,
		Misses:        mc.misses,
		TotalRequests: mc.hits + mc.misses,
		TotalKeys:     totalKeys,
	}
}

// GetMaterial busca un material con caché multi-nivel; nil si no está cacheado
func (mc *MaterialCache) GetMaterial(ctx context.Context, materialID int) *models.Material {
	start := time.Now()

	// 1. L1 Cache (Memoria local) - Más rápido
	if material := mc.getFromL1(materialID); material != nil {
		mc.recordHit()
		mc.logger.Debug("L1 cache hit",
			zap.Int("material_id", materialID),
			zap.Duration("latency", time.Since(start)))
		return material
	}

	// 2. L2 Cache (Redis) - Medio
	if material, err := mc.getFromL2(ctx, materialID); err == nil && material != nil {
		// Mover a L1 cache para futuras consultas
		mc.setToL1(materialID, material)
		mc.recordHit()
		mc.logger.Debug("L2 cache hit",
			zap.Int("material_id", materialID),
			zap.Duration("latency", time.Since(start)))
		return material
	}

	mc.recordMiss()
	mc.logger.Debug("Cache miss",
		zap.Int("material_id", materialID),
		zap.Duration("latency", time.Since(start)))

	return nil
}

// recordHit registra un hit en el caché
func (mc *MaterialCache) recordHit() {
	mc.statsMutex.Lock()
	mc.hits++
	mc.statsMutex.Unlock()
}

// recordMiss registra un miss en el caché
func (mc *MaterialCache) recordMiss() {
	mc.statsMutex.Lock()
	mc.misses++
	mc.statsMutex.Unlock()
}

// SetMaterial almacena un material en ambos niveles de caché
func (mc *MaterialCache) SetMaterial(ctx context.Context, material *models.Material) error {
	// 1. L1 Cache (memoria local)
	mc.setToL1(material.ID, material)

	// 2. L2 Cache (Redis)
	return mc.setToL2(ctx, material)
}

// InvalidateMaterial invalida un material en ambos cachés
func (mc *MaterialCache) InvalidateMaterial(ctx context.Context, materialID int) error {
	// 1. L1 Cache
	mc.l1Mutex.Lock()
	delete(mc.l1Cache, materialID)
	mc.l1Mutex.Unlock()

	// 2. L2 Cache
	return mc.redisClient.Del(ctx, fmt.Sprintf("material:%d", materialID)).Err()
}

// getFromL1 obtiene un material del L1 cache (memoria local)
func (mc *MaterialCache) getFromL1(materialID int) *models.Material {
	mc.l1Mutex.RLock()
	defer mc.l1Mutex.RUnlock()
	return mc.l1Cache[materialID]
}

// setToL1 almacena un material en el L1 cache
func (mc *MaterialCache) setToL1(materialID int, material *models.Material) {
	mc.l1Mutex.Lock()
	defer mc.l1Mutex.Unlock()

	// Verificar si necesitamos evictar
	if len(mc.l1Cache) >= mc.maxL1Size {
		mc.evictOne()
	}

	mc.l1Cache[materialID] = material
}

// evictOne elimina un elemento arbitrario del L1 cache
func (mc *MaterialCache) evictOne() {
	for key := range mc.l1Cache {
		delete(mc.l1Cache, key)
		break
	}
}

// getFromL2 obtiene un material del L2 cache (Redis)
func (mc *MaterialCache) getFromL2(ctx context.Context, materialID int) (*models.Material, error) {
	key := fmt.Sprintf("material:%d", materialID)
	data, err := mc.redisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var material models.Material
	if err := json.Unmarshal([]byte(data), &material); err != nil {
		return nil, err
	}

	return &material, nil
}

// setToL2 almacena un material en el L2 cache (Redis)
func (mc *MaterialCache) setToL2(ctx context.Context, material *models.Material) error {
	key := fmt.Sprintf("material:%d", material.ID)
	data, err := json.Marshal(material)
	if err != nil {
		return err
	}

	return mc.redisClient.Set(ctx, key, data, mc.ttl).Err()
}

// cleanupL1Cache limpia el L1 cache periódicamente
func (mc *MaterialCache) cleanupL1Cache() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		mc.l1Mutex.Lock()
		mc.logger.Debug("L1 cache cleanup", zap.Int("items", len(mc.l1Cache)))
		mc.l1Mutex.Unlock()
	}
}

// Stats retorna estadísticas del caché como mapa para el endpoint de monitorización
func (mc *MaterialCache) Stats() map[string]interface{} {
	stats := mc.GetStats()
	hitRate := 0.0
	if stats.TotalRequests > 0 {
		hitRate = float64(stats.Hits) / float64(stats.TotalRequests)
	}
	return map[string]interface{}{
		"hits":           stats.Hits,
		"misses":         stats.Misses,
		"total_requests": stats.TotalRequests,
		"total_keys":     stats.TotalKeys,
		"hit_rate":       hitRate,
	}
}
