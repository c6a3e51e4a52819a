package fx

import "go.uber.org/fx"

// CoreModule reúne o que a API e a CLI compartilham
var CoreModule = fx.Options(
	ConfigModule,
	ObservabilityModule,
	InfrastructureModule,
	DomainModule,
	SchedulerModule,
)

// AppModule reúne todos os módulos da aplicação
var AppModule = fx.Options(
	CoreModule,
	SchedulerJobsModule,
	MiddlewareModule,
	RoutesModule,
	ServerModule,
)
