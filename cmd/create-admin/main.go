package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ntwari02/proviQuiz/internal/config"
	"github.com/ntwari02/proviQuiz/internal/database/mongo"
	"github.com/ntwari02/proviQuiz/internal/models"
	"github.com/ntwari02/proviQuiz/internal/repository"
	"github.com/ntwari02/proviQuiz/internal/service"

	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	emailFlag    = kingpin.Flag("email", "Email of the admin account").String()
	nameFlag     = kingpin.Flag("name", "Display name").String()
	passwordFlag = kingpin.Flag("password", "Password, at least 6 characters").String()
	roleFlag     = kingpin.Flag("role", "admin or superadmin").String()
	yesFlag      = kingpin.Flag("yes", "Update an existing user without asking").Short('y').Bool()
)

var errCancelled = errors.New("cancelled")

type adminInput struct {
	Email    string
	Name     string
	Password string
	Role     models.Role
}

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *prompter) ask(question string) string {
	fmt.Fprint(p.out, question)
	line, _ := p.in.ReadString('\n')
	return strings.TrimSpace(line)
}

// collect fills in whatever the flags left empty by asking on the terminal.
func collect(p *prompter, in adminInput, roleText string) (adminInput, error) {
	if in.Email == "" {
		in.Email = p.ask("Email: ")
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if !strings.Contains(in.Email, "@") {
		return in, errors.New("invalid email address")
	}

	if in.Name == "" {
		in.Name = p.ask("Name (optional): ")
	}

	if in.Password == "" {
		in.Password = p.ask("Password (min 6 characters): ")
	}
	if len(in.Password) < 6 {
		return in, errors.New("password must be at least 6 characters")
	}

	if roleText == "" {
		roleText = p.ask("Role (admin/superadmin) [default: admin]: ")
	}
	in.Role = models.RoleAdmin
	if strings.EqualFold(roleText, string(models.RoleSuperAdmin)) {
		in.Role = models.RoleSuperAdmin
	}
	return in, nil
}

// ensureAdmin creates the account, or promotes an existing one and resets its
// password once confirm agrees. It reports whether a user was created.
func ensureAdmin(ctx context.Context, users service.UserStore, in adminInput, confirm func(*models.User) bool) (*models.User, bool, error) {
	hash, err := service.HashPassword(in.Password)
	if err != nil {
		return nil, false, err
	}

	existing, err := users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if !confirm(existing) {
			return nil, false, errCancelled
		}
		user, err := users.Update(ctx, existing.ID, &models.UserPatch{Role: &in.Role, PasswordHash: &hash})
		return user, false, err
	case !repository.IsNotFound(err):
		return nil, false, err
	}

	user, err := users.Create(ctx, &models.User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: &hash,
		Role:         in.Role,
		Active:       true,
	})
	return user, true, err
}

func main() {
	kingpin.CommandLine.Help = "Create or promote a PROVIQUIZ admin account"
	kingpin.Parse()

	p := &prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
	fmt.Println("=== Create Admin Account ===")

	in, err := collect(p, adminInput{Email: *emailFlag, Name: *nameFlag, Password: *passwordFlag}, *roleFlag)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	fmt.Println("Connecting to database...")
	db, err := mongo.Connect(config.ServiceConfig.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongo.DisconnectMongo()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	confirm := func(u *models.User) bool {
		if *yesFlag {
			return true
		}
		fmt.Printf("User with email %s already exists.\n", u.Email)
		return strings.EqualFold(p.ask(fmt.Sprintf("Do you want to update their role to %s? (y/n): ", in.Role)), "y")
	}

	user, created, err := ensureAdmin(ctx, repository.NewUserRepository(db), in, confirm)
	if errors.Is(err, errCancelled) {
		fmt.Println("Cancelled.")
		return
	}
	if err != nil {
		log.Fatalf("Failed to save admin: %v", err)
	}

	if created {
		fmt.Println("Admin account created successfully!")
	} else {
		fmt.Println("User updated successfully!")
	}
	fmt.Printf("   ID: %s\n   Email: %s\n   Role: %s\n", user.ID.Hex(), user.Email, user.Role)
}
