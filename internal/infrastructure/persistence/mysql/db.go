package mysql

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/infrastructure/config"
	applog "github.com/xiebiao/library/pkg/logger"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 条件更新在行锁上排队，连接数决定了同一时刻能有多少个扣减在等待
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	applog.L().Info("数据库连接成功",
		zap.String("host", cfg.Database.Host),
		zap.String("db", cfg.Database.DBName),
	)

	// 生产环境应使用版本化的迁移脚本
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// AutoMigrate 自动迁移表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&BookGenreModel{},
		&BookingModel{},
	)
}

// UserModel GORM用户模型
// domain/user/entity.go是领域实体，不依赖GORM，Repository负责两者转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:20;not null;default:reader;comment:角色(reader/admin)"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. available只通过条件UPDATE修改,不做应用层缓存
// 2. version只在元数据修改时+1,库存变化不改version
type BookModel struct {
	ID        uint      `gorm:"primaryKey"`
	Title     string    `gorm:"index;size:200;not null;comment:书名"`
	Year      int       `gorm:"not null;comment:出版年份"`
	AuthorID  uint      `gorm:"index;not null;comment:作者ID"`
	Available int       `gorm:"not null;default:0;comment:可借副本数"`
	Version   int       `gorm:"not null;default:0;comment:元数据版本号"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// BookGenreModel 图书-类别关联
type BookGenreModel struct {
	BookID  uint `gorm:"primaryKey;autoIncrement:false;comment:图书ID"`
	GenreID uint `gorm:"primaryKey;autoIncrement:false;index;comment:类别ID"`
}

// TableName 指定表名
func (BookGenreModel) TableName() string {
	return "book_genres"
}

// BookingModel GORM借阅记录模型
// 设计说明:
//  1. ActiveMarker借阅中为1、归还后为NULL;唯一索引(user_id, book_id, active_marker)
//     保证同一用户同一本书最多一条借阅中记录(NULL不参与唯一性比较)
//  2. 日期字段存UTC零点
//  3. fine以分为单位,归还时写入
type BookingModel struct {
	ID           uint       `gorm:"primaryKey"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_active_loan,priority:1;comment:用户ID"`
	BookID       uint       `gorm:"not null;index;uniqueIndex:idx_active_loan,priority:2;comment:图书ID"`
	ActiveMarker *int       `gorm:"uniqueIndex:idx_active_loan,priority:3;comment:借阅中标记(1借阅中,NULL已归还)"`
	BorrowedAt   time.Time  `gorm:"not null;index;comment:借阅日期"`
	DueAt        time.Time  `gorm:"not null;comment:应还日期"`
	ReturnedAt   *time.Time `gorm:"comment:归还日期"`
	Fine         int64      `gorm:"not null;default:0;comment:罚款(分)"`
	FinePaid     bool       `gorm:"not null;default:false;comment:罚款是否已缴"`
	CreatedAt    time.Time  `gorm:"comment:创建时间"`
	UpdatedAt    time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (BookingModel) TableName() string {
	return "bookings"
}
