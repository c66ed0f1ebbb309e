package routes

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func AddSystemRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/health", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("200"))
	})
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	if d.MediaRoot != "" {
		router.ServeFiles("/media/*filepath", http.Dir(d.MediaRoot))
	}
}

func AddAuthRoutes(router *httprouter.Router, d *Deps) {
	router.POST("/api/auth/token/login/", d.anonymousWrite("/api/auth/token/login/", "session", "create", d.Sessions.Login))
	router.POST("/api/auth/token/logout/", d.guard("/api/auth/token/logout/", "session", "delete", nil, d.Sessions.Logout))
	router.GET("/api/csrf/", d.guard("/api/csrf/", "csrf", "retrieve", nil, d.Sessions.CSRFToken))
}

func AddUserRoutes(router *httprouter.Router, d *Deps) {
	u := d.Users
	router.GET("/api/users/", d.guard("/api/users/", "user", "list", nil, u.List))
	router.POST("/api/users/", d.anonymousWrite("/api/users/", "user", "create", u.Register))

	router.GET("/api/users/:id/", byParam("id", map[string]httprouter.Handle{
		"me":            d.guard("/api/users/me/", "user", "me", nil, u.Me),
		"subscriptions": d.guard("/api/users/subscriptions/", "subscription", "list", nil, u.Subscriptions),
	}, d.guard("/api/users/:id/", "user", "retrieve", nil, u.Retrieve)))
	router.POST("/api/users/:id/", byParam("id", map[string]httprouter.Handle{
		"set_password": d.write("/api/users/set_password/", "user", "set_password", nil, u.SetPassword),
	}, nil))

	router.PUT("/api/users/:id/:action/", byParam("action", map[string]httprouter.Handle{
		"avatar": byParam("id", map[string]httprouter.Handle{
			"me": d.write("/api/users/me/avatar/", "avatar", "update", nil, u.SetAvatar),
		}, nil),
	}, nil))
	router.DELETE("/api/users/:id/:action/", byParam("action", map[string]httprouter.Handle{
		"avatar": byParam("id", map[string]httprouter.Handle{
			"me": d.guard("/api/users/me/avatar/", "avatar", "delete", nil, u.DeleteAvatar),
		}, nil),
		"subscribe": d.guard("/api/users/:id/subscribe/", "subscription", "remove", nil, u.Unsubscribe),
	}, nil))
	router.POST("/api/users/:id/:action/", byParam("action", map[string]httprouter.Handle{
		"subscribe": d.write("/api/users/:id/subscribe/", "subscription", "add", nil, u.Subscribe),
	}, nil))
}

func AddTagRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/api/tags/", d.guard("/api/tags/", "tag", "list", nil, d.Tags.List))
	router.GET("/api/tags/:id/", d.guard("/api/tags/:id/", "tag", "retrieve", nil, d.Tags.Retrieve))
}

func AddIngredientRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/api/ingredients/", d.guard("/api/ingredients/", "ingredient", "list", nil, d.Ingredients.List))
	router.GET("/api/ingredients/:id/", d.guard("/api/ingredients/:id/", "ingredient", "retrieve", nil, d.Ingredients.Retrieve))
}

func AddRecipeRoutes(router *httprouter.Router, d *Deps) {
	rh := d.Recipes
	router.GET("/api/recipes/", d.guard("/api/recipes/", "recipe", "list", nil, rh.List))
	router.POST("/api/recipes/", d.write("/api/recipes/", "recipe", "create", nil, rh.Create))

	router.GET("/api/recipes/:id/", byParam("id", map[string]httprouter.Handle{
		"download_shopping_cart": d.guard("/api/recipes/download_shopping_cart/", "shopping_list", "download", nil, rh.DownloadShoppingCart),
	}, d.guard("/api/recipes/:id/", "recipe", "retrieve", nil, rh.Retrieve)))
	update := d.write("/api/recipes/:id/", "recipe", "update", rh.OwnerOf, rh.Update)
	router.PATCH("/api/recipes/:id/", update)
	router.PUT("/api/recipes/:id/", update)
	router.DELETE("/api/recipes/:id/", d.guard("/api/recipes/:id/", "recipe", "delete", rh.OwnerOf, rh.Delete))

	router.POST("/api/recipes/:id/:action/", byParam("action", map[string]httprouter.Handle{
		"favorite":      d.write("/api/recipes/:id/favorite/", "favorite", "add", nil, rh.AddFavorite),
		"shopping_cart": d.write("/api/recipes/:id/shopping_cart/", "shopping_cart", "add", nil, rh.AddToCart),
	}, nil))
	router.DELETE("/api/recipes/:id/:action/", byParam("action", map[string]httprouter.Handle{
		"favorite":      d.guard("/api/recipes/:id/favorite/", "favorite", "remove", nil, rh.RemoveFavorite),
		"shopping_cart": d.guard("/api/recipes/:id/shopping_cart/", "shopping_cart", "remove", nil, rh.RemoveFromCart),
	}, nil))
	router.GET("/api/recipes/:id/:action/", byParam("action", map[string]httprouter.Handle{
		"get-link": d.guard("/api/recipes/:id/get-link/", "recipe", "get_link", nil, rh.GetLink),
	}, nil))
	router.GET("/api/recipes/:id/:action/qr/", byParam("action", map[string]httprouter.Handle{
		"get-link": d.guard("/api/recipes/:id/get-link/qr/", "recipe", "get_link", nil, rh.LinkQR),
	}, nil))

	router.GET("/s/:id/", d.guard("/s/:id/", "recipe", "retrieve", nil, rh.Redirect))
}

func AddAdminRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/api/admin/recipes/", d.guard("/api/admin/recipes/", "admin", "list", nil, d.Admin.Recipes))
	router.GET("/api/admin/ingredients/", d.guard("/api/admin/ingredients/", "admin", "list", nil, d.Admin.Ingredients))
	router.GET("/api/admin/tags/", d.guard("/api/admin/tags/", "admin", "list", nil, d.Admin.Tags))
}
