package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"timechart/core/database"
	botRepository "timechart/modules/bot/repository"
	"timechart/modules/bot/service"
	"timechart/modules/bot/transport"
	bookingService "timechart/modules/booking/service"
	groupService "timechart/modules/group/service"
	placeService "timechart/modules/place/service"
	scheduleRepository "timechart/modules/schedule/repository"
	userRepository "timechart/modules/user/repository"
)

func Init(
	api *tgbotapi.BotAPI,
	db database.IDatabase,
	users userRepository.UserRepositoryInterface,
	groups groupService.GroupServiceInterface,
	places placeService.PlaceServiceInterface,
	schedule scheduleRepository.ScheduleRepositoryInterface,
	booking bookingService.BookingServiceInterface,
	engine *bookingService.Engine,
) *transport.Poller {
	sessions := botRepository.NewSessionRepository(db)
	sender := transport.NewTelegramSender(api)
	conversation := service.NewConversationService(sessions, users, groups, places, schedule, booking, engine, sender)
	return transport.NewPoller(api, conversation)
}
