// Seed loads team members from a yaml file into the members table,
// hashing their initial passwords. Existing usernames are updated in
// place so the tool is safe to re-run.
package main

import (
	"flag"
	"fmt"
	"os"

	"crewsheet/internal/config"
	"crewsheet/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type seedFile struct {
	Members []seedMember `yaml:"members"`
}

type seedMember struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Team     string `yaml:"team"`
}

func main() {
	configFile := flag.String("config", "", "config file path")
	membersFile := flag.String("members", "etc/members.yaml", "members yaml file")
	flag.Parse()

	cfg := config.Load(*configFile)
	db, err := cfg.OpenGormDB()
	if err != nil {
		fmt.Fprintln(os.Stderr, "db connect failed:", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&model.Member{}); err != nil {
		fmt.Fprintln(os.Stderr, "migrate failed:", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*membersFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read members file:", err)
		os.Exit(1)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		fmt.Fprintln(os.Stderr, "parse members file:", err)
		os.Exit(1)
	}

	created, updated := 0, 0
	for _, sm := range seed.Members {
		hash, err := bcrypt.GenerateFromPassword([]byte(sm.Password), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintln(os.Stderr, "hash password for", sm.Username, ":", err)
			os.Exit(1)
		}
		m := model.Member{
			Username: sm.Username,
			Password: string(hash),
			Name:     sm.Name,
			Role:     sm.Role,
			Team:     sm.Team,
		}

		var existing model.Member
		err = db.Where("username = ?", sm.Username).First(&existing).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			if err := db.Create(&m).Error; err != nil {
				fmt.Fprintln(os.Stderr, "create", sm.Username, ":", err)
				os.Exit(1)
			}
			created++
		case err != nil:
			fmt.Fprintln(os.Stderr, "query", sm.Username, ":", err)
			os.Exit(1)
		default:
			if err := db.Model(&existing).Updates(&m).Error; err != nil {
				fmt.Fprintln(os.Stderr, "update", sm.Username, ":", err)
				os.Exit(1)
			}
			updated++
		}
	}
	fmt.Printf("seeded %d members (%d created, %d updated)\n", len(seed.Members), created, updated)
}
