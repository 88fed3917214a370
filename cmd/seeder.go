package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/permission-management/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := openGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to open gorm session: %v", err)
		}

		if clearData {
			for _, table := range []string{"attachments", "permission_requests", "permission_types", "users", "sectors"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		sectors := map[string]int64{}
		for _, name := range []string{"Administración", "Sistemas", "Mantenimiento"} {
			var id int64
			row := db.Raw("SELECT id FROM sectors WHERE name = ?", name).Row()
			if err := row.Scan(&id); err == nil {
				sectors[name] = id
				continue
			}
			if err := db.Exec("INSERT INTO sectors (name, description, created_at, updated_at) VALUES (?, ?, now(), now())", name, "Sector "+name).Error; err != nil {
				log.Fatalf("failed to insert sector %s: %v", name, err)
			}
			if err := db.Raw("SELECT id FROM sectors WHERE name = ?", name).Row().Scan(&id); err != nil {
				log.Fatalf("failed to read back sector %s: %v", name, err)
			}
			sectors[name] = id
			fmt.Println("Seeded sector:", name)
		}

		for _, name := range []string{"Vacaciones", "Enfermedad", "Trámite personal", "Capacitación"} {
			var exists int
			if err := db.Raw("SELECT 1 FROM permission_types WHERE name = ?", name).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO permission_types (name, description, created_at, updated_at) VALUES (?, ?, now(), now())", name, "Permiso por "+name).Error; err != nil {
				log.Fatalf("failed to insert permission type %s: %v", name, err)
			}
			fmt.Println("Seeded permission type:", name)
		}

		seedUser(db, "admin@permisos.local", "Administrador RRHH", string(hash), user.RoleHR, nil, nil)

		sistemas := sectors["Sistemas"]
		managerID := seedUser(db, "jefe.sistemas@permisos.local", "Jefa de Sistemas", string(hash), user.RoleManager, &sistemas, &sistemas)
		if managerID != 0 {
			if err := db.Exec("UPDATE sectors SET manager_id = ? WHERE id = ?", managerID, sistemas).Error; err != nil {
				log.Fatalf("failed to assign sector manager: %v", err)
			}
		}

		seedUser(db, "empleado@permisos.local", "Empleado de Sistemas", string(hash), user.RoleEmployee, &sistemas, nil)

		fmt.Println("Seeding complete. Default password for all seeded users:", password)
	},
}

// seedUser inserts the user if the email is not taken and returns its id.
func seedUser(db *gorm.DB, email, name, hash string, role user.Role, sectorID, managedSectorID *int64) int64 {
	var id int64
	if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err == nil {
		fmt.Println("User already exists:", email)
		return id
	}

	err := db.Exec(
		"INSERT INTO users (email, name, password_hash, role, sector_id, managed_sector_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, now(), now())",
		email, name, hash, role, sectorID, managedSectorID,
	).Error
	if err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err != nil {
		log.Fatalf("failed to read back user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
	return id
}
