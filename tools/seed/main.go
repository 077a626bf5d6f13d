// Command seed populates the Firestore project with sample users and a
// starter catalog so the services have data to serve out of the box.
// Users are created idempotently; rerunning skips existing accounts.
package main

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/amaljyothis2003/AkasaEats/pkg/config"
	"github.com/amaljyothis2003/AkasaEats/pkg/logger"
)

type seedUser struct {
	Email    string
	Password string
	Name     string
}

type seedItem struct {
	Name        string
	Description string
	Price       float64
	Category    string
	Stock       int
	Unit        string
	ImageURL    string
	Available   bool
}

var sampleUsers = []seedUser{
	{Email: "john@example.com", Password: "password123", Name: "John Doe"},
	{Email: "jane@example.com", Password: "password123", Name: "Jane Smith"},
	{Email: "test@akasaeats.com", Password: "test123456", Name: "Test User"},
}

var sampleItems = []seedItem{
	{Name: "Fresh Apple", Description: "Crisp and sweet red apples", Price: 3.99, Category: "Fruits", Stock: 100, Unit: "kg", ImageURL: "https://images.unsplash.com/photo-1568702846914-96b305d2aaeb?w=400", Available: true},
	{Name: "Banana", Description: "Fresh yellow bananas", Price: 2.49, Category: "Fruits", Stock: 150, Unit: "dozen", ImageURL: "https://images.unsplash.com/photo-1571771894821-ce9b6c11b08e?w=400", Available: true},
	{Name: "Orange", Description: "Juicy oranges", Price: 4.99, Category: "Fruits", Stock: 80, Unit: "kg", ImageURL: "https://images.unsplash.com/photo-1580052614034-c55d20bfee3b?w=400", Available: true},
	{Name: "Fresh Tomato", Description: "Ripe red tomatoes", Price: 2.99, Category: "Vegetables", Stock: 120, Unit: "kg", ImageURL: "https://images.unsplash.com/photo-1546470427-e26264be0b0d?w=400", Available: true},
	{Name: "Carrot", Description: "Fresh organic carrots", Price: 1.99, Category: "Vegetables", Stock: 90, Unit: "kg", ImageURL: "https://images.unsplash.com/photo-1598170845058-32b9d6a5da37?w=400", Available: true},
	{Name: "Potato", Description: "Fresh potatoes", Price: 1.49, Category: "Vegetables", Stock: 200, Unit: "kg", ImageURL: "https://images.unsplash.com/photo-1518977676601-b53f82aba655?w=400", Available: true},
	{Name: "Chicken Breast", Description: "Fresh boneless chicken breast", Price: 8.99, Category: "Non-Veg", Stock: 50, Unit: "kg", ImageURL: "https://images.unsplash.com/photo-1604503468506-a8da13d82791?w=400", Available: true},
	{Name: "Fish Fillet", Description: "Fresh fish fillet", Price: 12.99, Category: "Non-Veg", Stock: 30, Unit: "kg", ImageURL: "https://images.unsplash.com/photo-1534766438357-2b5b0c67b1b8?w=400", Available: true},
	{Name: "Whole Wheat Bread", Description: "Fresh whole wheat bread loaf", Price: 2.99, Category: "Breads", Stock: 60, Unit: "loaf", ImageURL: "https://images.unsplash.com/photo-1509440159596-0249088772ff?w=400", Available: true},
	{Name: "White Bread", Description: "Soft white bread loaf", Price: 2.49, Category: "Breads", Stock: 70, Unit: "loaf", ImageURL: "https://images.unsplash.com/photo-1586444248902-2f64eddc13df?w=400", Available: true},
	{Name: "Orange Juice", Description: "Fresh orange juice", Price: 4.99, Category: "Beverages", Stock: 40, Unit: "liter", ImageURL: "https://images.unsplash.com/photo-1600271886742-f049cd451bba?w=400", Available: true},
	{Name: "Apple Juice", Description: "Fresh apple juice", Price: 4.49, Category: "Beverages", Stock: 45, Unit: "liter", ImageURL: "https://images.unsplash.com/photo-1553530666-ba11a7da3888?w=400", Available: true},
	{Name: "Potato Chips", Description: "Crispy potato chips", Price: 3.99, Category: "Snacks", Stock: 100, Unit: "pack", ImageURL: "https://images.unsplash.com/photo-1566478989037-eec170784d0b?w=400", Available: true},
	{Name: "Mixed Nuts", Description: "Roasted mixed nuts", Price: 6.99, Category: "Snacks", Stock: 60, Unit: "pack", ImageURL: "https://images.unsplash.com/photo-1599599810769-bcde5a160d32?w=400", Available: true},
}

func main() {
	config.Load()
	projectID := config.Get("GOOGLE_CLOUD_PROJECT", "")
	credentialsFile := config.Get("GOOGLE_APPLICATION_CREDENTIALS", "")

	log, err := logger.New("seed")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	fsClient, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		log.Fatal("failed to connect to Firestore", zap.Error(err))
	}
	defer fsClient.Close()

	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		log.Fatal("failed to initialize Firebase app", zap.Error(err))
	}
	auth, err := fbApp.Auth(ctx)
	if err != nil {
		log.Fatal("failed to initialize Firebase auth", zap.Error(err))
	}

	usersCreated := seedUsers(ctx, auth, fsClient, log)
	itemsCreated := seedItems(ctx, fsClient, log)

	log.Info("seeding completed",
		zap.Int("users_created", usersCreated),
		zap.Int("items_created", itemsCreated))
}

func seedUsers(ctx context.Context, auth *fbauth.Client, fs *firestore.Client, log *zap.Logger) int {
	created := 0
	for _, u := range sampleUsers {
		params := (&fbauth.UserToCreate{}).
			Email(u.Email).
			Password(u.Password).
			DisplayName(u.Name)

		rec, err := auth.CreateUser(ctx, params)
		if err != nil {
			if fbauth.IsEmailAlreadyExists(err) {
				log.Info("user already exists", zap.String("email", u.Email))
				continue
			}
			log.Error("failed to create user", zap.String("email", u.Email), zap.Error(err))
			continue
		}

		doc := map[string]any{
			"uid":       rec.UID,
			"name":      u.Name,
			"email":     u.Email,
			"createdAt": firestore.ServerTimestamp,
			"updatedAt": firestore.ServerTimestamp,
		}
		if _, err := fs.Collection("users").Doc(rec.UID).Set(ctx, doc); err != nil {
			log.Error("failed to create user document", zap.String("email", u.Email), zap.Error(err))
			continue
		}

		log.Info("created user", zap.String("email", u.Email), zap.String("uid", rec.UID))
		created++
	}
	return created
}

func seedItems(ctx context.Context, fs *firestore.Client, log *zap.Logger) int {
	created := 0
	for _, item := range sampleItems {
		doc := map[string]any{
			"name":        item.Name,
			"description": item.Description,
			"price":       item.Price,
			"category":    item.Category,
			"stock":       item.Stock,
			"unit":        item.Unit,
			"imageUrl":    item.ImageURL,
			"available":   item.Available,
			"createdAt":   firestore.ServerTimestamp,
			"updatedAt":   firestore.ServerTimestamp,
		}

		ref, _, err := fs.Collection("items").Add(ctx, doc)
		if err != nil {
			log.Error("failed to create item", zap.String("name", item.Name), zap.Error(err))
			continue
		}

		log.Info("created item", zap.String("name", item.Name), zap.String("id", ref.ID))
		created++
	}
	return created
}
