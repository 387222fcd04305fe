// Command seed fills a development database with a demo user and a few
// weeks of plausible activity. Not for production use.
package main

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"github.com/bxcodec/faker/v3"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finboard/finboard-api/internal/config"
	"github.com/finboard/finboard-api/internal/database"
	"github.com/finboard/finboard-api/internal/models"
	"github.com/finboard/finboard-api/internal/services"
)

var expenseCategories = []string{"Groceries", "Rent", "Transport", "Dining", "Utilities", "Entertainment"}
var incomeCategories = []string{"Salary", "Freelance"}

func main() {
	transactionCount := flag.Int("transactions", 120, "number of transactions to generate")
	flag.Parse()

	_ = godotenv.Load()
	log := logrus.WithField("component", "seed")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBConnectionTimeout)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	users := database.NewUserRepo(pool)
	accounts := database.NewAccountRepo(pool)
	categories := database.NewCategoryRepo(pool)
	budgets := database.NewBudgetRepo(pool)
	goals := database.NewSavingGoalRepo(pool)
	recurring := database.NewRecurringRepo(pool)
	ledger := services.NewLedgerService(pool, nil)

	fullName := faker.Name()
	user, err := users.Upsert(ctx, "user_seed_demo", faker.Email(), &fullName)
	if err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}
	log.WithField("email", user.Email).Info("Demo user ready")

	var seededAccounts []models.Account
	for _, name := range []string{"Checking", "Savings", "Credit Card"} {
		account, err := accounts.Create(ctx, user.ID, name, decimal.NewFromInt(int64(1000+rand.Intn(4000))))
		if err != nil {
			log.Fatalf("Failed to create account %q: %v", name, err)
		}
		seededAccounts = append(seededAccounts, *account)
	}

	var expense, income []models.Category
	for _, name := range expenseCategories {
		category, err := categories.Create(ctx, user.ID, name, models.CategoryExpense)
		if err != nil {
			log.Fatalf("Failed to create category %q: %v", name, err)
		}
		expense = append(expense, *category)
	}
	for _, name := range incomeCategories {
		category, err := categories.Create(ctx, user.ID, name, models.CategoryIncome)
		if err != nil {
			log.Fatalf("Failed to create category %q: %v", name, err)
		}
		income = append(income, *category)
	}

	for i := 0; i < *transactionCount; i++ {
		account := seededAccounts[rand.Intn(len(seededAccounts))]
		date := time.Now().AddDate(0, 0, -rand.Intn(90))
		desc := faker.Sentence()

		var category models.Category
		var amount decimal.Decimal
		if rand.Intn(10) < 8 {
			category = expense[rand.Intn(len(expense))]
			amount = randomAmount(5, 300).Neg()
		} else {
			category = income[rand.Intn(len(income))]
			amount = randomAmount(500, 3000)
		}

		_, err := ledger.AddTransaction(ctx, user.ID, services.TransactionInput{
			AccountID:       account.ID,
			CategoryID:      &category.ID,
			Description:     &desc,
			Amount:          amount,
			TransactionDate: date,
		})
		if err != nil {
			log.Fatalf("Failed to create transaction: %v", err)
		}
	}
	log.WithField("count", *transactionCount).Info("Transactions created")

	now := time.Now()
	for _, category := range expense[:3] {
		_, err := budgets.Create(ctx, user.ID, category.ID, randomAmount(200, 800), int(now.Month()), now.Year())
		if err != nil {
			log.Fatalf("Failed to create budget: %v", err)
		}
	}

	if _, err := goals.Create(ctx, user.ID, "Vacation fund", decimal.NewFromInt(2500)); err != nil {
		log.Fatalf("Failed to create saving goal: %v", err)
	}

	rent := expense[1]
	if err := recurring.Create(ctx, &models.RecurringTransaction{
		UserID:      user.ID,
		AccountID:   seededAccounts[0].ID,
		CategoryID:  &rent.ID,
		Description: "Monthly rent",
		Amount:      decimal.NewFromInt(-950),
		Frequency:   models.FrequencyMonthly,
		StartDate:   time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		log.Fatalf("Failed to create recurring template: %v", err)
	}

	log.Info("Seed complete")
}

func randomAmount(min, max int) decimal.Decimal {
	cents := min*100 + rand.Intn((max-min)*100)
	return decimal.New(int64(cents), -2)
}
