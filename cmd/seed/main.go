package main

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/teamkoubyte/Koubyte-sub001/internal/auth"
	"github.com/teamkoubyte/Koubyte-sub001/internal/config"
	"github.com/teamkoubyte/Koubyte-sub001/internal/db"
	"github.com/teamkoubyte/Koubyte-sub001/internal/models"
	"github.com/teamkoubyte/Koubyte-sub001/internal/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type seedService struct {
	Name        string
	Description string
	Category    string
	Price       int64
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	gdb, err := db.Open(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err := models.AutoMigrate(gdb); err != nil {
		log.Fatal(err)
	}

	services := []seedService{
		{Name: "Computer Reparatie", Description: "Diagnose en herstel van trage of defecte computers en laptops.", Category: "Herstellingen", Price: 4900},
		{Name: "Virus Verwijdering", Description: "Verwijdering van virussen en malware, inclusief beveiligingsadvies.", Category: "Beveiliging", Price: 5900},
		{Name: "Wifi Optimalisatie", Description: "Analyse en verbetering van het draadloze netwerk thuis of op kantoor.", Category: "Netwerken", Price: 6900},
		{Name: "Data Herstel", Description: "Herstel van verloren bestanden van harde schijven en geheugenkaarten.", Category: "Herstellingen", Price: 8900},
		{Name: "Netwerk Installatie", Description: "Bekabeling en configuratie van een betrouwbaar bedrijfsnetwerk.", Category: "Netwerken", Price: 12900},
		{Name: "Backup Oplossingen", Description: "Automatische lokale en cloud back-ups voor zelfstandigen en kmo's.", Category: "Beveiliging", Price: 7900},
		{Name: "Website Onderhoud", Description: "Updates, snelheidsoptimalisatie en monitoring van uw website.", Category: "Web", Price: 9900},
		{Name: "IT Consultancy", Description: "Advies op maat over hardware, software en digitale werkprocessen.", Category: "Advies", Price: 9500},
	}

	for _, svc := range services {
		slug := utils.Slugify(svc.Name)
		var existing models.Service
		err := gdb.Where("slug = ?", slug).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("seed lookup for %s: %v", svc.Name, err)
		}
		row := models.Service{
			ID:          uuid.NewString(),
			Name:        svc.Name,
			Slug:        slug,
			Description: svc.Description,
			Category:    svc.Category,
			Price:       svc.Price,
			Active:      true,
		}
		if err := gdb.Create(&row).Error; err != nil {
			log.Fatalf("seed error for %s: %v", svc.Name, err)
		}
	}

	email := envOrDefault("ADMIN_EMAIL", cfg.AdminEmail)
	password := envOrDefault("ADMIN_PASSWORD", cfg.AdminPassword)
	if email == "" || password == "" {
		log.Println("seed admin: ADMIN_EMAIL or ADMIN_PASSWORD missing, skipping")
	} else if err := seedAdminUser(gdb, email, password, cfg.Timezone); err != nil {
		log.Fatalf("seed admin error for %s: %v", email, err)
	}

	log.Println("seed completed")
}

func seedAdminUser(gdb *gorm.DB, email, password string, loc *time.Location) error {
	var existing models.User
	err := gdb.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().In(loc)
	user := models.User{
		ID:              uuid.NewString(),
		Email:           email,
		PasswordHash:    hash,
		Name:            "Koubyte Beheer",
		Role:            models.RoleAdmin,
		EmailVerified:   true,
		EmailVerifiedAt: &now,
	}
	return gdb.Create(&user).Error
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
