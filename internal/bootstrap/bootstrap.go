package bootstrap

import (
	"context"
	"net/http"

	"newsportal/internal/app"
	"newsportal/internal/config"
	"newsportal/internal/handler"
	"newsportal/internal/infra/captcha"
	"newsportal/internal/infra/codestore"
	"newsportal/internal/infra/fdfs"
	"newsportal/internal/infra/metrics"
	"newsportal/internal/infra/sms"
	"newsportal/internal/infra/storagetoken"
	"newsportal/internal/infra/token"
	"newsportal/internal/middleware"
	"newsportal/internal/repository"
	"newsportal/internal/server"
	adminsvc "newsportal/internal/service/admin"
	authsvc "newsportal/internal/service/auth"
	coursesvc "newsportal/internal/service/course"
	docsvc "newsportal/internal/service/doc"
	newssvc "newsportal/internal/service/news"
	verifysvc "newsportal/internal/service/verify"

	"go.uber.org/zap"
)

// Application 聚合构建完成的服务与路由。
type Application struct {
	Resources *app.Resources
	Router    http.Handler
}

// BuildApplication 完成依赖装配：仓储、基础设施客户端、业务服务、
// handler、中间件与路由，全部在这里接线。
func BuildApplication(ctx context.Context, logger *zap.SugaredLogger, resources *app.Resources, rt config.Runtime) (*Application, error) {
	metrics.MustRegister()

	userRepo := repository.NewUserRepository(resources.DB)
	newsRepo := repository.NewNewsRepository(resources.DB)
	tagRepo := repository.NewTagRepository(resources.DB)
	commentRepo := repository.NewCommentRepository(resources.DB)
	hotRepo := repository.NewHotNewsRepository(resources.DB)
	bannerRepo := repository.NewBannerRepository(resources.DB)
	docRepo := repository.NewDocRepository(resources.DB)
	courseRepo := repository.NewCourseRepository(resources.DB)

	store := codestore.New(resources.Redis)
	issuer := captcha.NewIssuer(store, captcha.Options{TTL: rt.ImageCodeTTL})
	sessions := token.NewSessionManager(rt.JWTSecret)
	sender := sms.NewFromEnv()

	tokenIssuer, err := storagetoken.NewIssuerFromEnv()
	if err != nil {
		return nil, err
	}
	if tokenIssuer == nil {
		logger.Infow("storage token issuer disabled; editor direct upload unavailable")
	}

	verifyService := verifysvc.NewService(store, issuer, userRepo, sender, verifysvc.Options{
		SMSCodeTTL:      rt.SMSCodeTTL,
		SMSRateLimitTTL: rt.SMSRateLimitTTL,
		SMSCodeNums:     rt.SMSCodeNums,
	})
	authService := authsvc.NewService(userRepo, store, sessions, authsvc.Options{
		SessionTTL:  rt.SessionTTL,
		RememberTTL: rt.RememberTTL,
		SMSCodeNums: rt.SMSCodeNums,
	})
	newsService := newssvc.NewService(newsRepo, commentRepo, hotRepo, bannerRepo, tagRepo, newssvc.Options{
		HotNewsCount:    rt.HotNewsCount,
		BannerCount:     rt.BannerCount,
		PageSize:        rt.PageSize,
		SearchPageSize:  rt.SearchPageSize,
		MaxCommentDepth: rt.CommentDepth,
	})
	adminService := adminsvc.NewService(
		newsRepo, tagRepo, hotRepo, bannerRepo, docRepo, courseRepo,
		fdfs.NewGatewayClient(rt.FDFSEndpoint, 0),
		tokenIssuer,
		adminsvc.Options{PageSize: rt.PageSize, FDFSDomain: rt.FDFSDomain},
	)
	docService := docsvc.NewService(docRepo, docsvc.Options{
		UpstreamBase: rt.DocUpstreamBase,
		Timeout:      rt.UpstreamTimeout,
	})
	courseService := coursesvc.NewService(courseRepo)

	router := server.NewRouter(server.RouterOptions{
		VerifyHandler: handler.NewVerifyHandler(verifyService),
		UserHandler:   handler.NewUserHandler(authService),
		NewsHandler:   handler.NewNewsHandler(newsService),
		DocHandler:    handler.NewDocHandler(docService),
		CourseHandler: handler.NewCourseHandler(courseService),
		AdminHandler:  handler.NewAdminHandler(adminService),
		AuthMW:        middleware.NewAuthMiddleware(sessions),
	})

	return &Application{
		Resources: resources,
		Router:    router,
	}, nil
}
