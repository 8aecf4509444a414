package app

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/naratama/library-service/library/config"
	"github.com/naratama/library-service/library/internal/errs"
	"github.com/naratama/library-service/library/internal/model"
	"github.com/naratama/library-service/library/internal/service"
	"github.com/naratama/library-service/library/migrations"
	"github.com/naratama/library-service/pkg/auth"
	"github.com/naratama/library-service/pkg/logger"
	"github.com/naratama/library-service/pkg/postgres"
)

const seedPassword = "Naratama#2024"

var seedUsers = []model.CreateUserRequest{
	{Name: "Naratama Admin", PhoneNumber: "081200000001", Email: "admin@naratama.id", Role: auth.RoleAdmin, Password: seedPassword},
	{Name: "Naratama Staff", PhoneNumber: "081200000002", Email: "staff@naratama.id", Role: auth.RoleStaff, Password: seedPassword},
	{Name: "Demo Reader", PhoneNumber: "081200000003", Email: "reader@naratama.id", Role: auth.RoleUser, Password: seedPassword},
}

var seedBooks = []model.CreateBookRequest{
	{
		Title: "Laskar Pelangi", Author: "Andrea Hirata", ISBN: "9789793062792", Publisher: "Bentang Pustaka",
		PublishYear: 2005, Category: "Fiction", Genre: []string{"Novel", "Drama"}, Language: "Indonesian",
		Pages: 529, Location: "A-01", Quantity: 3,
	},
	{
		Title: "Bumi Manusia", Author: "Pramoedya Ananta Toer", ISBN: "9789799731234", Publisher: "Lentera Dipantara",
		PublishYear: 2005, Category: "Fiction", Genre: []string{"Historical"}, Language: "Indonesian",
		Pages: 535, Location: "A-02", Quantity: 2,
	},
	{
		Title: "The Go Programming Language", Author: "Alan Donovan", ISBN: "9780134190440", Publisher: "Addison-Wesley",
		PublishYear: 2015, Category: "Technology", Genre: []string{"Programming"}, Language: "English",
		Pages: 380, Location: "C-04", Quantity: 1,
	},
}

var seedRooms = []model.CreateRoomRequest{
	{
		Name: "Ruang Diskusi Melati", RoomNumber: "D-101", Type: model.RoomSmallDiscussion, Capacity: 6,
		HourlyRate: 25000, Amenities: []string{"Whiteboard", "WiFi"},
	},
	{
		Name: "Ruang Rapat Cendana", RoomNumber: "M-201", Type: model.RoomLargeMeeting, Capacity: 20,
		HourlyRate: 75000, Amenities: []string{"Projector", "Whiteboard", "WiFi", "AC"},
	},
}

// Seed loads demo accounts, books and rooms. Rows that already exist are
// left alone, so it can run against a populated database.
func Seed(ctx context.Context, cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "seed")
	db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, publisher, err := newService(db, cfg, log)
	if err != nil {
		return err
	}
	if publisher != nil {
		defer publisher.Close()
	}
	return seed(ctx, svc, log)
}

func seed(ctx context.Context, svc *service.Service, log *zap.Logger) error {
	var admin *model.User
	for _, req := range seedUsers {
		user, err := svc.CreateUser(ctx, req)
		if err = seeded(err); err != nil {
			return err
		}
		if user.Role == auth.RoleAdmin {
			admin = &user
		}
		log.Info("user", zap.String("phone", req.PhoneNumber), zap.Bool("created", user.ID != uuid.Nil))
	}

	res, err := svc.CreateBooks(ctx, model.BulkCreateBooksRequest{Books: seedBooks})
	if err = seeded(err); err != nil {
		return err
	}
	log.Info("books", zap.Int("created", res.Created))

	for _, req := range seedRooms {
		if _, err = svc.CreateRoom(ctx, req); seeded(err) != nil {
			return err
		}
	}

	// The welcome announcement goes out once, together with the first admin.
	if admin != nil {
		_, err = svc.CreateAnnouncement(ctx, model.CreateAnnouncementRequest{
			Title:    "Selamat datang di Naratama",
			Content:  "Perpustakaan dan ruang kerja bersama Naratama kini dapat dipesan secara online.",
			Type:     model.AnnouncementGeneral,
			Priority: model.PriorityHigh,
		}, admin.Name)
		if err != nil {
			return err
		}
	}
	log.Info("seed finished")
	return nil
}

func seeded(err error) error {
	if errs.KindOf(err) == errs.KindConflict {
		return nil
	}
	return err
}
