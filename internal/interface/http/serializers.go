package handlers

import "github.com/oksasatya/recipe-api/internal/domain/entity"

// userSummary is a user nested under a recipe; it never carries recipes.
type userSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	ImageURL string `json:"image_url"`
	Bio      string `json:"bio"`
}

// recipeSummary is a recipe nested under a user; it never carries the user.
type recipeSummary struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Instructions      string `json:"instructions"`
	MinutesToComplete int    `json:"minutes_to_complete"`
	UserID            *int64 `json:"user_id"`
}

type userJSON struct {
	userSummary
	Recipes []recipeSummary `json:"recipes"`
}

type recipeJSON struct {
	recipeSummary
	User *userSummary `json:"user"`
}

func summarizeUser(u *entity.User) *userSummary {
	if u == nil {
		return nil
	}
	return &userSummary{ID: u.ID, Username: u.Username, ImageURL: u.ImageURL, Bio: u.Bio}
}

func summarizeRecipe(r *entity.Recipe) recipeSummary {
	return recipeSummary{
		ID:                r.ID,
		Title:             r.Title,
		Instructions:      r.Instructions,
		MinutesToComplete: r.MinutesToComplete,
		UserID:            r.UserID,
	}
}

func newUserJSON(u *entity.User) userJSON {
	out := userJSON{userSummary: *summarizeUser(u), Recipes: make([]recipeSummary, 0, len(u.Recipes))}
	for i := range u.Recipes {
		out.Recipes = append(out.Recipes, summarizeRecipe(&u.Recipes[i]))
	}
	return out
}

func newRecipeJSON(r *entity.Recipe) recipeJSON {
	return recipeJSON{recipeSummary: summarizeRecipe(r), User: summarizeUser(r.User)}
}

func newRecipeList(recipes []entity.Recipe) []recipeJSON {
	out := make([]recipeJSON, 0, len(recipes))
	for i := range recipes {
		out = append(out, newRecipeJSON(&recipes[i]))
	}
	return out
}
