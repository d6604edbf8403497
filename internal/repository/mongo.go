package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"todo-service/internal/models"
	"todo-service/internal/utils"
)

const (
	usersCollection = "users"
	todosCollection = "todos"
)

// EnsureMongoIndexes создаёт уникальные индексы пользователей и индекс списка задач.
// Вызывается один раз при старте, повторный вызов безопасен.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("ошибка создания индексов users: %w", err)
	}

	_, err = db.Collection(todosCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("ошибка создания индексов todos: %w", err)
	}

	utils.LogSuccess("MongoDB", "Индексы коллекций созданы")
	return nil
}

type MongoUserRepository struct {
	users *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	utils.LogSuccess("UserRepository", "Инициализирован репозиторий пользователей (MongoDB)")
	return &MongoUserRepository{users: db.Collection(usersCollection)}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	utils.LogDB("CREATE USER", fmt.Sprintf("Создание пользователя: %s", user.Username))

	doc := *user
	doc.ID = newID()
	doc.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.LogWarning("UserRepository", "Пользователь уже существует: %s", user.Username)
			return ErrUserExists
		}
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	*user = doc
	utils.LogSuccess("UserRepository", fmt.Sprintf("Пользователь создан: %s (ID: %s)", user.Username, user.ID))
	return nil
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	utils.LogDB("GET USER", "Поиск пользователя по email")
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	utils.LogDB("GET USER", fmt.Sprintf("Поиск пользователя: %s", id))
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	filter := bson.M{"$or": bson.A{bson.M{"username": username}, bson.M{"email": email}}}
	count, err := r.users.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("ошибка проверки уникальности пользователя: %w", err)
	}
	return count > 0, nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return &user, nil
}

type MongoTodoRepository struct {
	todos *mongo.Collection
}

func NewMongoTodoRepository(db *mongo.Database) *MongoTodoRepository {
	utils.LogSuccess("TodoRepository", "Инициализирован репозиторий задач (MongoDB)")
	return &MongoTodoRepository{todos: db.Collection(todosCollection)}
}

func (r *MongoTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	utils.LogDB("CREATE TODO", fmt.Sprintf("Создание задачи для пользователя %s", todo.UserID))

	doc := *todo
	doc.ID = newID()
	doc.Completed = false
	doc.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.todos.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("ошибка создания задачи: %w", err)
	}

	*todo = doc
	return nil
}

func (r *MongoTodoRepository) ListByOwner(ctx context.Context, userID string) ([]models.Todo, error) {
	utils.LogDB("LIST TODOS", fmt.Sprintf("Список задач пользователя %s", userID))

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.todos.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка задач: %w", err)
	}

	todos := make([]models.Todo, 0)
	if err := cursor.All(ctx, &todos); err != nil {
		return nil, fmt.Errorf("ошибка чтения списка задач: %w", err)
	}
	return todos, nil
}

func (r *MongoTodoRepository) GetByIDForOwner(ctx context.Context, userID, todoID string) (*models.Todo, error) {
	utils.LogDB("GET TODO", fmt.Sprintf("Поиск задачи %s", todoID))

	var todo models.Todo
	if err := r.todos.FindOne(ctx, ownedTodo(userID, todoID)).Decode(&todo); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("ошибка получения задачи: %w", err)
	}
	return &todo, nil
}

func (r *MongoTodoRepository) Update(ctx context.Context, userID, todoID string, patch models.TodoPatch) (*models.Todo, error) {
	utils.LogDB("UPDATE TODO", fmt.Sprintf("Обновление задачи %s", todoID))

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	// Пустой $set Mongo отвергает, поэтому пустой патч - это просто чтение
	if len(set) == 0 {
		return r.GetByIDForOwner(ctx, userID, todoID)
	}

	var todo models.Todo
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.todos.FindOneAndUpdate(ctx, ownedTodo(userID, todoID), bson.M{"$set": set}, opts).Decode(&todo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("ошибка обновления задачи: %w", err)
	}
	return &todo, nil
}

func (r *MongoTodoRepository) Delete(ctx context.Context, userID, todoID string) error {
	utils.LogDB("DELETE TODO", fmt.Sprintf("Удаление задачи %s", todoID))

	err := r.todos.FindOneAndDelete(ctx, ownedTodo(userID, todoID)).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("ошибка удаления задачи: %w", err)
	}
	return nil
}

func ownedTodo(userID, todoID string) bson.M {
	return bson.M{"_id": todoID, "user": userID}
}
