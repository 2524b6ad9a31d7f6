// @title           かんさつにっき API
// @version         1.0
// @description     植物の成長を毎日記録するWebサービス

// @host      localhost:8000
// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 `Bearer ` プレフィックス付きでトークンを入力する
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/makino-seiya/kansatsunikki/internal/app/routes"
	"github.com/makino-seiya/kansatsunikki/internal/domain/models"
	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/config"
	"github.com/makino-seiya/kansatsunikki/internal/infrastructure/database"
	Logger "github.com/makino-seiya/kansatsunikki/pkg/logger"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	// ログを初期化する
	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("ログの初期化に失敗しました: %v\n", err)
		os.Exit(1)
	}

	// .envファイルを読み込む
	if err := godotenv.Load(); err != nil {
		Logger.Warning(".envファイルを読み込めませんでした: %v", err)
		// 環境変数が別の方法で設定されている可能性があるため続行する
	} else {
		Logger.Info(".envファイルを読み込みました")
	}

	cfg := config.GetConfig()

	// データベース接続プールを作成する
	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		log.Fatalf("データベース接続プールを作成できません: %v", err)
	}
	db := pool.GetDB()

	// マイグレーションモードに応じてテーブルを準備する
	if cfg.DBMigrationMode == "drop" {
		log.Println("警告: dropモードで起動しています。全テーブルを削除して再作成します")
		if err := dropAndRecreateTables(db); err != nil {
			log.Fatalf("テーブルの再作成に失敗しました: %v", err)
		}
	} else {
		log.Println("標準モードで起動しています。新しい列とテーブルのみ追加します")
		if err := autoMigrate(db); err != nil {
			log.Fatalf("自動マイグレーションに失敗しました: %v", err)
		}
	}

	// 初期データを準備する
	seedPlants(db)
	ensureAdminExists(db, cfg)

	// ルーターを初期化する
	r := routes.SetupRouter(pool, cfg)

	port := cfg.ServerPort

	printSystemInfo(pool)

	// 全インターフェース(0.0.0.0)で待ち受ける
	Logger.Info("サーバーを起動します: http://0.0.0.0:%s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		Logger.Error("サーバーの起動に失敗しました: %v", err)
		os.Exit(1)
	}
}

// autoMigrate 全モデルを自動マイグレーションする（列とテーブルの追加のみ）
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Plant{},
		&models.Record{},
		&models.PlantRecord{},
		&models.User{},
	)

	if err != nil {
		return err
	}

	fmt.Println("データベースのマイグレーションが完了しました")
	return nil
}

// dropAndRecreateTables 全テーブルを削除して再作成する
func dropAndRecreateTables(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB connection: %w", err)
	}

	// 外部キー制約を一時的に無効化する
	if _, err := sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		log.Printf("外部キー制約の無効化に失敗しました: %v", err)
	}
	defer sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1")

	tables := []string{"plant_records", "records", "plants", "users"}
	for _, table := range tables {
		log.Printf("テーブルを削除します: %s", table)
		if _, err := sqlDB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			log.Printf("テーブルの削除に失敗しました: %v", err)
		}
	}

	return autoMigrate(db)
}

// seedPlants 植物マスタが空なら初期データを投入する
func seedPlants(db *gorm.DB) {
	var count int64
	db.Model(&models.Plant{}).Count(&count)
	if count > 0 {
		return
	}

	plants := []models.Plant{
		{Name: "向日葵（ひまわり）", DisplayOrder: 1, IsActive: true},
		{Name: "秋桜（コスモス）", DisplayOrder: 2, IsActive: true},
		{Name: "朝顔（あさがお）", DisplayOrder: 3, IsActive: true},
	}

	for _, plant := range plants {
		if err := db.Create(&plant).Error; err != nil {
			log.Printf("初期植物データの投入に失敗しました: %v", err)
			return
		}
	}

	log.Println("初期植物データを投入しました")
}

// ensureAdminExists 管理者アカウントの存在を保証する
func ensureAdminExists(db *gorm.DB, cfg *config.Config) {
	var count int64
	db.Model(&models.User{}).Count(&count)

	if count == 0 {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.DefaultAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("パスワードハッシュの生成に失敗しました: %v", err)
		}

		admin := models.User{
			Username:     "admin",
			PasswordHash: string(hashedPassword),
		}

		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("デフォルト管理者の作成に失敗しました: %v", err)
		}

		log.Println("デフォルト管理者アカウントを作成しました")
	}
}

// printSystemInfo システム情報を表示する
func printSystemInfo(pool *database.ConnectionPool) {
	stats, err := pool.Stats()
	if err == nil {
		log.Printf("データベース接続プールの状態: %+v", stats)
	}

	log.Printf("CPUコア数: %d", runtime.NumCPU())
	log.Printf("現在のGoルーチン数: %d", runtime.NumGoroutine())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Printf("メモリ使用量: Alloc=%v MiB, TotalAlloc=%v MiB, Sys=%v MiB",
		m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024)
}
