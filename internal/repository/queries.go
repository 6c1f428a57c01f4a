package repository

const (
	queryInsertWallet = `
		INSERT INTO hotwallet (symbol, chain, contract_address, wallet_address, wallet_name)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, symbol, chain, contract_address, wallet_address, wallet_name, created_at`

	querySelectWalletsBySymbol = `
		SELECT id, symbol, chain, contract_address, wallet_address, wallet_name, created_at
		FROM hotwallet
		WHERE UPPER(symbol) = ?
		ORDER BY created_at, id`
)
