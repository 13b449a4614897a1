package authz

import (
	"gorm.io/gorm"

	authdomain "github.com/agencydesk/agencydesk/internal/auth/domain"
)

// Row scopes narrow a list query to the rows the actor may see. They compose
// with gorm's Scopes() and assume the query's FROM table matches the helper
// name. A principal with no possible rows gets a always-false predicate, not
// an error.

func none(tx *gorm.DB) *gorm.DB {
	return tx.Where("1 = 0")
}

func ClientScope(actor authdomain.Principal) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		switch actor.Role {
		case authdomain.RoleOwner:
			return tx
		case authdomain.RoleManager:
			return tx.Where("clients.id IN (SELECT client_id FROM client_managers WHERE user_id = ?)", actor.ID)
		case authdomain.RoleContributor:
			// Contributors work at the campaign level and never see the
			// client roster.
			return none(tx)
		case authdomain.RoleClient:
			if actor.ClientID == nil {
				return none(tx)
			}
			return tx.Where("clients.id = ?", *actor.ClientID)
		}
		return none(tx)
	}
}

func AccountScope(actor authdomain.Principal) func(*gorm.DB) *gorm.DB {
	return byClientColumn(actor, "accounts.client_id")
}

func WebsiteScope(actor authdomain.Principal) func(*gorm.DB) *gorm.DB {
	return byClientColumn(actor, "websites.client_id")
}

func CampaignScope(actor authdomain.Principal) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		switch actor.Role {
		case authdomain.RoleOwner:
			return tx
		case authdomain.RoleManager:
			return tx.Where("campaigns.client_id IN (SELECT client_id FROM client_managers WHERE user_id = ?)", actor.ID)
		case authdomain.RoleContributor:
			return tx.Where("campaigns.id IN (SELECT campaign_id FROM campaign_contributors WHERE user_id = ?)", actor.ID)
		case authdomain.RoleClient:
			if actor.ClientID == nil {
				return none(tx)
			}
			return tx.Where("campaigns.client_id = ?", *actor.ClientID)
		}
		return none(tx)
	}
}

func TimeEntryScope(actor authdomain.Principal) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		switch actor.Role {
		case authdomain.RoleOwner:
			return tx
		case authdomain.RoleManager:
			return tx.Where("time_entries.client_id IN (SELECT client_id FROM client_managers WHERE user_id = ?)", actor.ID)
		case authdomain.RoleContributor:
			return tx.Where("time_entries.user_id = ?", actor.ID)
		case authdomain.RoleClient:
			if actor.ClientID == nil {
				return none(tx)
			}
			return tx.Where("time_entries.client_id = ?", *actor.ClientID)
		}
		return none(tx)
	}
}

func ChangeLogScope(actor authdomain.Principal) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		switch actor.Role {
		case authdomain.RoleOwner:
			return tx
		case authdomain.RoleManager:
			return tx.Where("change_log_entries.client_id IN (SELECT client_id FROM client_managers WHERE user_id = ?)", actor.ID)
		case authdomain.RoleContributor:
			// Entity-level, not client-level: only entries on an assigned
			// campaign or on a website reachable through one.
			return tx.Where(`(change_log_entries.entity_type = 'campaign' AND change_log_entries.entity_id IN (
					SELECT campaign_id FROM campaign_contributors WHERE user_id = ?))
				OR (change_log_entries.entity_type = 'website' AND change_log_entries.entity_id IN (
					SELECT c.website_id FROM campaigns c
					JOIN campaign_contributors cc ON cc.campaign_id = c.id
					WHERE cc.user_id = ?))`, actor.ID, actor.ID)
		case authdomain.RoleClient:
			if actor.ClientID == nil {
				return none(tx)
			}
			return tx.Where("change_log_entries.client_id = ?", *actor.ClientID)
		}
		return none(tx)
	}
}

func byClientColumn(actor authdomain.Principal, column string) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		switch actor.Role {
		case authdomain.RoleOwner:
			return tx
		case authdomain.RoleManager:
			return tx.Where(column+" IN (SELECT client_id FROM client_managers WHERE user_id = ?)", actor.ID)
		case authdomain.RoleContributor:
			return tx.Where(column+` IN (
				SELECT c.client_id FROM campaigns c
				JOIN campaign_contributors cc ON cc.campaign_id = c.id
				WHERE cc.user_id = ?)`, actor.ID)
		case authdomain.RoleClient:
			if actor.ClientID == nil {
				return none(tx)
			}
			return tx.Where(column+" = ?", *actor.ClientID)
		}
		return none(tx)
	}
}
