package server

import (
	"fmt"
	"time"

	"newsportal/internal/handler"
	"newsportal/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions 汇总路由依赖的全部 handler 与中间件。
type RouterOptions struct {
	VerifyHandler *handler.VerifyHandler
	UserHandler   *handler.UserHandler
	NewsHandler   *handler.NewsHandler
	DocHandler    *handler.DocHandler
	CourseHandler *handler.CourseHandler
	AdminHandler  *handler.AdminHandler
	AuthMW        *middleware.AuthMiddleware
}

// NewRouter 构建应用的 Gin Engine，汇总所有 REST 接口与公共中间件配置。
func NewRouter(opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// gin 中间件配置
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: gin.LogFormatter(func(params gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s\" %d %s\n",
				params.ClientIP,
				params.TimeStamp.Format(time.RFC3339),
				params.Method,
				params.Path,
				params.StatusCode,
				params.Latency,
			)
		}),
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		if opts.VerifyHandler != nil {
			api.GET("/image_codes/:image_code_id", opts.VerifyHandler.ImageCode)
			api.POST("/sms_codes", opts.VerifyHandler.SMSCode)
		}

		if opts.UserHandler != nil {
			api.POST("/users/register", opts.UserHandler.Register)
			api.POST("/users/login", opts.UserHandler.Login)
			api.GET("/users/logout", opts.UserHandler.Logout)
			api.GET("/usernames/:username/count", opts.UserHandler.UsernameCount)
			api.GET("/mobiles/:mobile/count", opts.UserHandler.MobileCount)
		}

		if opts.NewsHandler != nil {
			api.GET("/index", opts.NewsHandler.Index)
			api.GET("/banners", opts.NewsHandler.Banners)
			api.GET("/news", opts.NewsHandler.List)
			api.GET("/news/:news_id", opts.NewsHandler.Detail)
			api.GET("/search", opts.NewsHandler.Search)
			// 发评论需要登录。
			comments := api.Group("")
			if opts.AuthMW != nil {
				comments.Use(opts.AuthMW.Handle())
			}
			comments.POST("/news/:news_id/comments", opts.NewsHandler.AddComment)
		}

		if opts.DocHandler != nil {
			api.GET("/docs", opts.DocHandler.List)
			api.GET("/doc/:doc_id", opts.DocHandler.Download)
		}

		if opts.CourseHandler != nil {
			api.GET("/courses", opts.CourseHandler.List)
			api.GET("/courses/:course_id", opts.CourseHandler.Detail)
		}

		if opts.AdminHandler != nil {
			admin := api.Group("/admin")
			if opts.AuthMW != nil {
				admin.Use(opts.AuthMW.Handle())
			}

			admin.GET("/news", opts.AdminHandler.ListNews)
			admin.POST("/news", opts.AdminHandler.PublishNews)
			admin.GET("/news_picker", opts.AdminHandler.PickNews)
			admin.GET("/news/:news_id", opts.AdminHandler.GetNews)
			admin.PUT("/news/:news_id", opts.AdminHandler.EditNews)
			admin.DELETE("/news/:news_id", opts.AdminHandler.DeleteNews)

			admin.GET("/tags", opts.AdminHandler.ListTags)
			admin.POST("/tags", opts.AdminHandler.CreateTag)
			admin.PUT("/tags/:tag_id", opts.AdminHandler.RenameTag)
			admin.DELETE("/tags/:tag_id", opts.AdminHandler.DeleteTag)

			admin.GET("/hotnews", opts.AdminHandler.ListHotNews)
			admin.POST("/hotnews", opts.AdminHandler.AddHotNews)
			admin.PUT("/hotnews/:hotnews_id", opts.AdminHandler.UpdateHotNews)
			admin.DELETE("/hotnews/:hotnews_id", opts.AdminHandler.DeleteHotNews)

			admin.GET("/banners", opts.AdminHandler.ListBanners)
			admin.POST("/banners", opts.AdminHandler.AddBanner)
			admin.PUT("/banners/:banner_id", opts.AdminHandler.UpdateBanner)
			admin.DELETE("/banners/:banner_id", opts.AdminHandler.DeleteBanner)

			admin.GET("/docs", opts.AdminHandler.ListDocs)
			admin.POST("/docs", opts.AdminHandler.PublishDoc)
			admin.PUT("/docs/:doc_id", opts.AdminHandler.EditDoc)
			admin.DELETE("/docs/:doc_id", opts.AdminHandler.DeleteDoc)

			admin.GET("/courses", opts.AdminHandler.ListCourses)
			admin.GET("/course_meta", opts.AdminHandler.CourseMeta)
			admin.GET("/courses/:course_id", opts.AdminHandler.GetCourse)
			admin.POST("/courses", opts.AdminHandler.PublishCourse)
			admin.PUT("/courses/:course_id", opts.AdminHandler.EditCourse)
			admin.DELETE("/courses/:course_id", opts.AdminHandler.DeleteCourse)

			admin.POST("/upload/image", opts.AdminHandler.UploadImage)
			admin.GET("/upload/token", opts.AdminHandler.StorageToken)
		}
	}

	return r
}
